package synth

import "strings"

// nameTemplate is one synthetic business identity: display name, category,
// and the slug used to fabricate its domain.
type nameTemplate struct {
	name     string
	category string
	slug     string
}

var restaurantTemplates = []nameTemplate{
	{"Bella Vista", "Italian Restaurant", "bellavista"},
	{"Golden Dragon", "Chinese Restaurant", "goldendragon"},
	{"The Local Burger", "American Restaurant", "localburger"},
	{"Sakura Sushi", "Japanese Restaurant", "sakurasushi"},
	{"Mediterranean Grill", "Mediterranean Restaurant", "mediterraneangrill"},
	{"Taco Fiesta", "Mexican Restaurant", "tacofiesta"},
	{"Blue Moon Bistro", "French Restaurant", "bluemoonbistro"},
	{"Spice Garden", "Indian Restaurant", "spicegarden"},
	{"Corner Deli", "Deli", "cornerdeli"},
	{"Pizza Corner", "Pizza Restaurant", "pizzacorner"},
	{"Sunrise Cafe", "Cafe", "sunrisecafe"},
	{"Ocean View Seafood", "Seafood Restaurant", "oceanviewseafood"},
	{"Mountain Steakhouse", "Steakhouse", "mountainsteakhouse"},
	{"Green Garden", "Vegetarian Restaurant", "greengarden"},
	{"Downtown Diner", "American Diner", "downtowndiner"},
}

var dentistTemplates = []nameTemplate{
	{"Smile Dental", "Dentist", "smiledental"},
	{"Family Dentistry", "Family Dentist", "familydentistry"},
	{"Bright Teeth Clinic", "Dental Clinic", "brightteeth"},
	{"Perfect Smile Center", "Cosmetic Dentist", "perfectsmile"},
	{"Gentle Care Dental", "Pediatric Dentist", "gentlecare"},
	{"Advanced Dental Group", "Dental Specialist", "advanceddental"},
	{"White Pearl Dentistry", "General Dentist", "whitepearl"},
	{"Modern Dental Practice", "Dental Practice", "moderndental"},
	{"Healthy Smiles Clinic", "Dental Clinic", "healthysmiles"},
	{"Premier Dental Care", "Dental Care", "premierdentalcare"},
}

var legalTemplates = []nameTemplate{
	{"Johnson & Associates", "Law Firm", "johnsonlaw"},
	{"Smith Legal Group", "Attorney", "smithlegal"},
	{"Metro Law Partners", "Law Firm", "metrolaw"},
	{"Elite Legal Services", "Legal Services", "elitelegal"},
	{"Family Law Center", "Family Attorney", "familylawcenter"},
	{"Corporate Legal Solutions", "Corporate Attorney", "corporatelegal"},
	{"Justice Law Firm", "Criminal Attorney", "justicelaw"},
	{"Citywide Legal", "General Attorney", "citywidelegal"},
	{"Premier Law Group", "Law Group", "premierlaw"},
	{"Professional Legal Advisors", "Legal Advisor", "professionallegal"},
}

var plumberTemplates = []nameTemplate{
	{"Quick Fix Plumbing", "Plumber", "quickfixplumbing"},
	{"Metro Plumbing Services", "Plumbing Services", "metroplumbing"},
	{"24/7 Emergency Plumbing", "Emergency Plumber", "emergencyplumbing"},
	{"Professional Pipe Solutions", "Plumber", "pipesolutions"},
	{"City Plumbing Experts", "Plumbing Expert", "cityplumbing"},
	{"Reliable Plumbing Co", "Plumbing Company", "reliableplumbing"},
	{"Expert Drain Services", "Drain Specialist", "expertdrain"},
	{"Premier Plumbing Group", "Plumber", "premierplumbing"},
	{"Fast Flow Plumbing", "Plumber", "fastflow"},
	{"Total Plumbing Solutions", "Plumbing Solutions", "totalplumbing"},
}

// templatesFor selects the template set whose keywords appear in the query.
// Unrecognized queries get generic professional-services templates built
// from the query itself.
func templatesFor(query string) []nameTemplate {
	lower := strings.ToLower(query)
	switch {
	case strings.Contains(lower, "restaurant") || strings.Contains(lower, "food"):
		return restaurantTemplates
	case strings.Contains(lower, "dentist"):
		return dentistTemplates
	case strings.Contains(lower, "lawyer") || strings.Contains(lower, "attorney"):
		return legalTemplates
	case strings.Contains(lower, "plumber"):
		return plumberTemplates
	default:
		return genericTemplates(query)
	}
}

func genericTemplates(query string) []nameTemplate {
	service := titleWords(query)
	slug := slugify(query)
	return []nameTemplate{
		{"Professional " + service, service + " Services", slug + "services"},
		{"Expert " + service + " Solutions", service + " Expert", "expert" + slug},
		{"Premier " + service + " Group", service + " Group", "premier" + slug},
		{"Metro " + service + " Center", service + " Center", "metro" + slug},
		{"Elite " + service + " Services", service + " Specialist", "elite" + slug},
		{"City " + service + " Solutions", service + " Solutions", "city" + slug},
		{"Advanced " + service + " Co", service + " Company", "advanced" + slug},
		{"Quality " + service + " Services", service + " Provider", "quality" + slug},
		{"Reliable " + service + " Group", service + " Group", "reliable" + slug},
		{"Top " + service + " Professionals", service + " Professional", "top" + slug},
	}
}

var streetNames = []string{
	"Main Street", "Oak Avenue", "Pine Street", "Business Boulevard", "Commerce Drive",
	"First Avenue", "Second Street", "Park Avenue", "Broadway", "Center Street",
	"Elm Street", "Maple Avenue", "Washington Street", "Lincoln Avenue", "Madison Street",
	"Franklin Boulevard", "Jefferson Drive", "Roosevelt Avenue", "Kennedy Street", "Wilson Avenue",
}

var neighborhoods = []string{
	"Downtown", "Midtown", "Uptown", "West Side", "East Side",
	"North End", "South District", "Central District",
}

var hoursOptions = []string{
	"Mon-Fri: 9AM-6PM",
	"Mon-Sat: 8AM-8PM",
	"Daily: 10AM-10PM",
	"Mon-Fri: 8AM-5PM, Sat: 9AM-3PM",
	"Mon-Sun: 24/7",
	"Tue-Sat: 9AM-7PM",
	"Mon-Thu: 9AM-6PM, Fri-Sat: 9AM-8PM",
}

var emailPrefixes = []string{
	"info", "contact", "hello", "support", "office",
	"admin", "service", "team", "welcome", "connect",
}

var directions = []string{"Downtown", "Central", "North", "South", "East", "West"}

var priceTiers = []string{"$", "$$", "$$$", "$$$$"}

func titleWords(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
