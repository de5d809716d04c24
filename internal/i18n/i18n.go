// Package i18n holds the message catalog used to localize directions.
//
// English strings are the catalog keys themselves, so an English printer
// reproduces them verbatim. Every other language needs an entry per key.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

var supported = []language.Tag{language.English, language.Arabic}

var (
	matcher = language.NewMatcher(supported)
	cat     = buildCatalog()
)

var arabic = map[string]string{
	"Start by heading %s on %s":                 "ابدأ بالتوجه %s على %s",
	"You have arrived at your destination":      "لقد وصلت إلى وجهتك",
	"Turn %s onto %s":                           "انعطف %s إلى %s",
	"Continue %s on %s":                         "تابع %s على %s",
	"Continue on %s":                            "تابع على %s",
	"Continue onto %s":                          "تابع إلى %s",
	"At the roundabout, take the exit onto %s":  "عند الدوار، اسلك المخرج إلى %s",
	"Wait at the bus stop":                      "انتظر في موقف الحافلة",
	"Follow %s":                                 "اتبع %s",
	"Continue %s":                               "تابع %s",
	"%s for %s":                                 "%s لمسافة %s",
	"the road heading %s":                       "الطريق المتجه %s",
	"%s meters":                                 "%s متر",
	"%s kilometers":                             "%s كيلومتر",
	"%s second":                                 "%s ثانية",
	"%s seconds":                                "%s ثوانٍ",
	"%s minute":                                 "%s دقيقة",
	"%s minutes":                                "%s دقائق",
	"%s and %s":                                 "%s و %s",
	"north":                                     "شمالاً",
	"northeast":                                 "شمال شرق",
	"east":                                      "شرقاً",
	"southeast":                                 "جنوب شرق",
	"south":                                     "جنوباً",
	"southwest":                                 "جنوب غرب",
	"west":                                      "غرباً",
	"northwest":                                 "شمال غرب",
	"forward":                                   "للأمام",
	"left":                                      "يساراً",
	"right":                                     "يميناً",
	"slight left":                               "قليلاً إلى اليسار",
	"slight right":                              "قليلاً إلى اليمين",
	"sharp left":                                "بحدة إلى اليسار",
	"sharp right":                               "بحدة إلى اليمين",
	"straight":                                  "مباشرة",
	"uturn":                                     "للخلف",
	"No route found between these locations.":   "لم يتم العثور على طريق بين هذين الموقعين.",
	"Please enter both origin and destination.": "يرجى إدخال نقطة البداية والوجهة.",
}

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, msg := range arabic {
		// SetString only fails on malformed tags.
		_ = b.SetString(language.Arabic, key, msg)
	}
	return b
}

// Match picks the best supported language for an explicit tag or an
// Accept-Language header value. Unknown input falls back to English.
func Match(preferences ...string) language.Tag {
	var tags []language.Tag
	for _, p := range preferences {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		parsed, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if len(tags) == 0 {
		return language.English
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return language.English
	}
	return supported[idx]
}

// Printer returns a printer bound to the catalog for the given tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(cat))
}

// English is the default printer.
func English() *message.Printer { return Printer(language.English) }

// IsRTL reports whether text in the tag's script reads right to left.
func IsRTL(tag language.Tag) bool {
	base, _ := tag.Base()
	return base.String() == "ar"
}
