package geo

// Country binds a Tourvisor destination code to its Russian display name.
type Country struct {
	Code string
	Name string
}

// Countries is the static destination table. The order is fixed and
// significant: prefix resolution picks the first match in table order
// (alphabetical by Russian name, as published by the search backend).
var Countries = []Country{
	{"46", "Абхазия"},
	{"31", "Австрия"},
	{"55", "Азербайджан"},
	{"71", "Албания"},
	{"17", "Андорра"},
	{"88", "Аргентина"},
	{"53", "Армения"},
	{"72", "Аруба"},
	{"59", "Бахрейн"},
	{"57", "Беларусь"},
	{"20", "Болгария"},
	{"39", "Бразилия"},
	{"44", "Великобритания"},
	{"37", "Венгрия"},
	{"90", "Венесуэла"},
	{"16", "Вьетнам"},
	{"38", "Германия"},
	{"6", "Греция"},
	{"54", "Грузия"},
	{"11", "Доминикана"},
	{"1", "Египет"},
	{"30", "Израиль"},
	{"3", "Индия"},
	{"7", "Индонезия"},
	{"29", "Иордания"},
	{"92", "Иран"},
	{"14", "Испания"},
	{"24", "Италия"},
	{"78", "Казахстан"},
	{"40", "Камбоджа"},
	{"79", "Катар"},
	{"51", "Кения"},
	{"15", "Кипр"},
	{"60", "Киргизия"},
	{"13", "Китай"},
	{"10", "Куба"},
	{"80", "Ливан"},
	{"27", "Маврикий"},
	{"36", "Малайзия"},
	{"8", "Мальдивы"},
	{"50", "Мальта"},
	{"23", "Марокко"},
	{"18", "Мексика"},
	{"81", "Мьянма"},
	{"82", "Непал"},
	{"9", "ОАЭ"},
	{"64", "Оман"},
	{"87", "Панама"},
	{"35", "Португалия"},
	{"47", "Россия"},
	{"93", "Саудовская Аравия"},
	{"28", "Сейшелы"},
	{"58", "Сербия"},
	{"25", "Сингапур"},
	{"43", "Словения"},
	{"2", "Таиланд"},
	{"41", "Танзания"},
	{"5", "Тунис"},
	{"4", "Турция"},
	{"56", "Узбекистан"},
	{"26", "Филиппины"},
	{"34", "Финляндия"},
	{"32", "Франция"},
	{"22", "Хорватия"},
	{"21", "Черногория"},
	{"19", "Чехия"},
	{"52", "Швейцария"},
	{"12", "Шри-Ланка"},
	{"69", "Эстония"},
	{"70", "Южная Корея"},
	{"33", "Ямайка"},
	{"49", "Япония"},
}

// cityCodes maps well-known resort cities (normalized to lower case)
// to the destination code of their country.
var cityCodes = map[string]string{
	"дубай":         "9",
	"абу-даби":      "9",
	"анталья":       "4",
	"стамбул":       "4",
	"хургада":       "1",
	"шарм-эль-шейх": "1",
	"пхукет":        "2",
	"паттайя":       "2",
	"бали":          "7",
}

var knownCodes = buildCodeSet()

func buildCodeSet() map[string]struct{} {
	set := make(map[string]struct{}, len(Countries))
	for _, c := range Countries {
		set[c.Code] = struct{}{}
	}
	return set
}

// KnownCode reports whether code belongs to the destination table.
func KnownCode(code string) bool {
	_, ok := knownCodes[code]
	return ok
}

// CountryName returns the display name for a destination code, if known.
func CountryName(code string) (string, bool) {
	for _, c := range Countries {
		if c.Code == code {
			return c.Name, true
		}
	}
	return "", false
}
