package airquality

import "strings"

// CityProfile is one entry in the fixed city sample used for the global view
// and for mock data when the point provider is unavailable.
type CityProfile struct {
	Name        string
	Country     string
	Lat         float64
	Lng         float64
	BaselineAQI int
}

// Cities is the fixed sample of monitored cities. BaselineAQI values are
// long-run typical indices, used only to bias synthesized measurements.
var Cities = []CityProfile{
	{Name: "New York", Country: "United States", Lat: 40.7128, Lng: -74.006, BaselineAQI: 85},
	{Name: "Delhi", Country: "India", Lat: 28.6139, Lng: 77.209, BaselineAQI: 195},
	{Name: "London", Country: "United Kingdom", Lat: 51.5074, Lng: -0.1278, BaselineAQI: 62},
	{Name: "Tokyo", Country: "Japan", Lat: 35.6762, Lng: 139.6503, BaselineAQI: 55},
	{Name: "Sydney", Country: "Australia", Lat: -33.8688, Lng: 151.2093, BaselineAQI: 38},
	{Name: "Paris", Country: "France", Lat: 48.8566, Lng: 2.3522, BaselineAQI: 68},
	{Name: "Beijing", Country: "China", Lat: 39.9042, Lng: 116.4074, BaselineAQI: 155},
	{Name: "Mumbai", Country: "India", Lat: 19.076, Lng: 72.8777, BaselineAQI: 160},
	{Name: "Los Angeles", Country: "United States", Lat: 34.0522, Lng: -118.2437, BaselineAQI: 95},
	{Name: "São Paulo", Country: "Brazil", Lat: -23.5505, Lng: -46.6333, BaselineAQI: 78},
	{Name: "Cairo", Country: "Egypt", Lat: 30.0444, Lng: 31.2357, BaselineAQI: 170},
	{Name: "Mexico City", Country: "Mexico", Lat: 19.4326, Lng: -99.1332, BaselineAQI: 120},
}

// FindCity matches a city name against the fixed sample by case-insensitive
// substring in either direction.
func FindCity(name string) (CityProfile, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return CityProfile{}, false
	}
	for _, c := range Cities {
		cn := strings.ToLower(c.Name)
		if strings.Contains(cn, n) || strings.Contains(n, cn) {
			return c, true
		}
	}
	return CityProfile{}, false
}
