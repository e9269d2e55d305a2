package service

import "sort"

const baselineLanguage = "en"

// ResolveLanguages computes the union of all language codes present across
// the localization maps of a collection. Pure, no I/O.
func ResolveLanguages(localizations []Localization) map[string]bool {
	languages := make(map[string]bool)
	for _, localization := range localizations {
		for language := range localization {
			languages[language] = true
		}
	}
	return languages
}

// MissingLanguages returns the sorted, de-duplicated list of languages for
// which the entity has no usable translation. Without an English baseline
// completeness cannot be judged, so every resolved language counts as
// missing. A non-English description textually identical to the English one
// is an untranslated placeholder and counts as missing too.
func MissingLanguages(localization Localization, allLanguages map[string]bool) []string {
	missing := make(map[string]bool, len(allLanguages))

	baseline, hasBaseline := localization[baselineLanguage]
	if localization == nil || !hasBaseline {
		for language := range allLanguages {
			missing[language] = true
		}
		return sortedLanguages(missing)
	}

	for language := range allLanguages {
		if language == baselineLanguage {
			continue
		}
		content, ok := localization[language]
		if !ok || content.Description == baseline.Description {
			missing[language] = true
		}
	}
	return sortedLanguages(missing)
}

func sortedLanguages(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	languages := make([]string, 0, len(set))
	for language := range set {
		languages = append(languages, language)
	}
	sort.Strings(languages)
	return languages
}
