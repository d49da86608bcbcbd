package trip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hotelAt(name string, dx, dy float64) Hotel {
	return Hotel{
		Name:     name,
		City:     "Vancouver",
		Province: "BC",
		Location: metersToDegrees(dx, dy),
	}
}

func amenityAt(cat Category, dx, dy float64) Amenity {
	return Amenity{Category: cat, Location: metersToDegrees(dx, dy)}
}

func TestScoreHotels_BestHotelScoresHundred(t *testing.T) {
	// Six food amenities near the hotel, weight 5: raw score 30. As the
	// only amenity-adjacent hotel it normalizes to exactly 100.
	hotels := []Hotel{
		hotelAt("Near Six Cafes", 0, 0),
		hotelAt("Remote", 10000, 10000),
	}
	var amenities []Amenity
	for i := 0; i < 6; i++ {
		amenities = append(amenities, amenityAt(CategoryFoodDrink, float64(i*30), 50))
	}

	scored := ScoreHotels(hotels, amenities, Weights{CategoryFoodDrink: 5}, 350)
	require.Len(t, scored, 2)

	assert.Equal(t, 6, scored[0].CategoryCounts[CategoryFoodDrink])
	assert.Equal(t, 100.0, scored[0].TotalScore)
	assert.Equal(t, 0.0, scored[1].TotalScore)
}

func TestScoreHotels_ProportionalNormalization(t *testing.T) {
	hotels := []Hotel{
		hotelAt("Six", 0, 0),
		hotelAt("Three", 5000, 0),
	}
	var amenities []Amenity
	for i := 0; i < 6; i++ {
		amenities = append(amenities, amenityAt(CategoryFoodDrink, float64(i*30), 50))
	}
	for i := 0; i < 3; i++ {
		amenities = append(amenities, amenityAt(CategoryFoodDrink, 5000+float64(i*30), 50))
	}

	scored := ScoreHotels(hotels, amenities, Weights{CategoryFoodDrink: 5}, 350)

	assert.Equal(t, 100.0, scored[0].TotalScore)
	assert.Equal(t, 50.0, scored[1].TotalScore)
	assert.Equal(t, 100.0, scored[0].CategoryNormalized[CategoryFoodDrink])
	assert.Equal(t, 50.0, scored[1].CategoryNormalized[CategoryFoodDrink])
}

func TestScoreHotels_WeightScaleInvariance(t *testing.T) {
	// Doubling every weight cannot change normalized scores.
	hotels := []Hotel{
		hotelAt("A", 0, 0),
		hotelAt("B", 5000, 0),
		hotelAt("C", 10000, 0),
	}
	amenities := []Amenity{
		amenityAt(CategoryFoodDrink, 10, 10),
		amenityAt(CategoryFoodDrink, 20, -30),
		amenityAt(CategoryHealth, -40, 60),
		amenityAt(CategoryFoodDrink, 5020, 10),
		amenityAt(CategoryShop, 5050, -80),
		amenityAt(CategoryHealth, 10010, 40),
	}

	weights := Weights{CategoryFoodDrink: 3, CategoryHealth: 2, CategoryShop: 1}
	doubled := Weights{CategoryFoodDrink: 6, CategoryHealth: 4, CategoryShop: 2}

	first := ScoreHotels(hotels, amenities, weights, 350)
	second := ScoreHotels(hotels, amenities, doubled, 350)

	for i := range first {
		assert.Equal(t, first[i].TotalScore, second[i].TotalScore,
			"hotel %s total changed under weight scaling", first[i].Hotel.Name)
	}
}

func TestScoreHotels_AllZeroStaysZero(t *testing.T) {
	hotels := []Hotel{hotelAt("A", 0, 0), hotelAt("B", 1000, 0)}

	scored := ScoreHotels(hotels, nil, Weights{CategoryFoodDrink: 5}, 350)
	for _, s := range scored {
		assert.Equal(t, 0.0, s.TotalScore)
	}
}

func TestScoreHotels_RadiusBoundary(t *testing.T) {
	hotels := []Hotel{hotelAt("A", 0, 0), hotelAt("B", 9000, 0)}
	amenities := []Amenity{
		amenityAt(CategoryFoodDrink, 0, 340),  // inside 350m
		amenityAt(CategoryFoodDrink, 0, 400),  // outside
		amenityAt(CategoryFoodDrink, 9000, 100), // belongs to B
	}

	scored := ScoreHotels(hotels, amenities, Weights{CategoryFoodDrink: 1}, 350)
	assert.Equal(t, 1, scored[0].CategoryCounts[CategoryFoodDrink])
	assert.Equal(t, 1, scored[1].CategoryCounts[CategoryFoodDrink])
}

func TestScoreHotels_InputsNotMutated(t *testing.T) {
	hotels := []Hotel{hotelAt("A", 0, 0)}
	amenities := []Amenity{amenityAt(CategoryFoodDrink, 10, 10)}
	weights := Weights{CategoryFoodDrink: 5}

	hotelCopy := hotels[0]
	amenityCopy := amenities[0]

	_ = ScoreHotels(hotels, amenities, weights, 350)

	assert.Equal(t, hotelCopy, hotels[0])
	assert.Equal(t, amenityCopy, amenities[0])
	assert.Equal(t, 5.0, weights[CategoryFoodDrink])
}

func TestScoreHotels_EmptyHotels(t *testing.T) {
	assert.Nil(t, ScoreHotels(nil, nil, Weights{}, 350))
}

func TestScoreHotels_DefaultRadius(t *testing.T) {
	hotels := []Hotel{hotelAt("A", 0, 0)}
	amenities := []Amenity{amenityAt(CategoryFoodDrink, 0, 300)}

	scored := ScoreHotels(hotels, amenities, Weights{CategoryFoodDrink: 1}, 0)
	assert.Equal(t, 1, scored[0].CategoryCounts[CategoryFoodDrink])
}

func TestScoreBand(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{100, "green"},
		{76, "green"},
		{75, "orange"},
		{51, "orange"},
		{50, "red"},
		{26, "red"},
		{25, "darkred"},
		{0, "darkred"},
	}
	for _, tt := range tests {
		if got := ScoreBand(tt.score); got != tt.want {
			t.Errorf("ScoreBand(%.0f) = %s, want %s", tt.score, got, tt.want)
		}
	}
}
