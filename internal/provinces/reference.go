package provinces

// Official second-level administrative counts
const (
	OfficialCities    = 98
	OfficialRegencies = 416
	OfficialTotal     = OfficialCities + OfficialRegencies
)

var reference = [...]string{
	"Aceh",
	"Sumatera Utara",
	"Sumatera Barat",
	"Riau",
	"Jambi",
	"Sumatera Selatan",
	"Bengkulu",
	"Lampung",
	"Kepulauan Bangka Belitung",
	"Kepulauan Riau",
	"DKI Jakarta",
	"Jawa Barat",
	"Jawa Tengah",
	"DI Yogyakarta",
	"Jawa Timur",
	"Banten",
	"Bali",
	"Nusa Tenggara Barat",
	"Nusa Tenggara Timur",
	"Kalimantan Barat",
	"Kalimantan Tengah",
	"Kalimantan Selatan",
	"Kalimantan Timur",
	"Kalimantan Utara",
	"Sulawesi Utara",
	"Sulawesi Tengah",
	"Sulawesi Selatan",
	"Sulawesi Tenggara",
	"Gorontalo",
	"Sulawesi Barat",
	"Maluku",
	"Maluku Utara",
	"Papua Barat",
	"Papua Barat Daya",
	"Papua",
	"Papua Selatan",
	"Papua Tengah",
	"Papua Pegunungan",
}

// Reference returns a copy of the 38 official province names
func Reference() []string {
	out := make([]string, len(reference))
	copy(out, reference[:])
	return out
}
