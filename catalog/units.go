package catalog

func u(id, name, abbr string, sys System, factor float64) Unit {
	return Unit{ID: id, Name: name, Abbreviation: abbr, System: sys, Factor: factor}
}

var units = [...][]Unit{
	Distance: {
		u("inch", "Inches", "in", SystemUS, 0.0254),
		u("foot", "Feet", "ft", SystemUS, 0.3048),
		u("yard", "Yards", "yd", SystemUS, 0.9144),
		u("mile", "Miles", "mi", SystemUS, 1609.344),
		u("mm", "Millimeters", "mm", SystemMetric, 0.001),
		u("cm", "Centimeters", "cm", SystemMetric, 0.01),
		u("meter", "Meters", "m", SystemMetric, 1),
		u("km", "Kilometers", "km", SystemMetric, 1000),
	},
	Weight: {
		u("ounce", "Ounces", "oz", SystemUS, 28.3495),
		u("pound", "Pounds", "lb", SystemUS, 453.592),
		u("stone", "Stone", "st", SystemUS, 6350.29),
		u("ton_us", "US Tons", "ton", SystemUS, 907185),
		u("mg", "Milligrams", "mg", SystemMetric, 0.001),
		u("gram", "Grams", "g", SystemMetric, 1),
		u("kg", "Kilograms", "kg", SystemMetric, 1000),
		u("ton_metric", "Metric Tons", "t", SystemMetric, 1000000),
	},
	Volume: {
		u("tsp", "Teaspoons", "tsp", SystemUS, 4.92892),
		u("tbsp", "Tablespoons", "tbsp", SystemUS, 14.7868),
		u("floz", "Fluid Ounces", "fl oz", SystemUS, 29.5735),
		u("cup", "Cups", "cup", SystemUS, 236.588),
		u("pint", "Pints", "pt", SystemUS, 473.176),
		u("quart", "Quarts", "qt", SystemUS, 946.353),
		u("gallon", "Gallons", "gal", SystemUS, 3785.41),
		u("ml", "Milliliters", "ml", SystemMetric, 1),
		u("cl", "Centiliters", "cl", SystemMetric, 10),
		u("dl", "Deciliters", "dl", SystemMetric, 100),
		u("liter", "Liters", "L", SystemMetric, 1000),
	},
	Area: {
		u("sq_in", "Square Inches", "sq in", SystemUS, 0.00064516),
		u("sq_ft", "Square Feet", "sq ft", SystemUS, 0.092903),
		u("sq_yd", "Square Yards", "sq yd", SystemUS, 0.836127),
		u("acre", "Acres", "ac", SystemUS, 4046.86),
		u("sq_mi", "Square Miles", "sq mi", SystemUS, 2589988),
		u("sq_cm", "Square Centimeters", "sq cm", SystemMetric, 0.0001),
		u("sq_m", "Square Meters", "sq m", SystemMetric, 1),
		u("hectare", "Hectares", "ha", SystemMetric, 10000),
		u("sq_km", "Square Kilometers", "sq km", SystemMetric, 1000000),
	},
	Speed: {
		u("mph", "Miles per Hour", "mph", SystemUS, 0.44704),
		u("fps", "Feet per Second", "ft/s", SystemUS, 0.3048),
		u("kmh", "Kilometers per Hour", "km/h", SystemMetric, 0.277778),
		u("ms", "Meters per Second", "m/s", SystemMetric, 1),
	},
	// Factors are unused: see convert.Convert.
	Temperature: {
		u("fahrenheit", "Fahrenheit", "°F", SystemUS, 1),
		u("celsius", "Celsius", "°C", SystemMetric, 1),
	},
}

// recommended pairs a source unit with the target picked by default when the
// user selects it.
var recommended = map[string]string{
	"inch":  "cm",
	"foot":  "meter",
	"yard":  "meter",
	"mile":  "km",
	"mm":    "inch",
	"cm":    "inch",
	"meter": "foot",
	"km":    "mile",

	"ounce":      "gram",
	"pound":      "kg",
	"stone":      "kg",
	"ton_us":     "ton_metric",
	"mg":         "ounce",
	"gram":       "ounce",
	"kg":         "pound",
	"ton_metric": "ton_us",

	"tsp":    "ml",
	"tbsp":   "ml",
	"floz":   "ml",
	"cup":    "ml",
	"pint":   "liter",
	"quart":  "liter",
	"gallon": "liter",
	"ml":     "floz",
	"cl":     "floz",
	"dl":     "cup",
	"liter":  "gallon",

	"sq_in":   "sq_cm",
	"sq_ft":   "sq_m",
	"sq_yd":   "sq_m",
	"acre":    "hectare",
	"sq_mi":   "sq_km",
	"sq_cm":   "sq_in",
	"sq_m":    "sq_ft",
	"hectare": "acre",
	"sq_km":   "sq_mi",

	"mph": "kmh",
	"fps": "ms",
	"kmh": "mph",
	"ms":  "fps",

	"fahrenheit": "celsius",
	"celsius":    "fahrenheit",
}
