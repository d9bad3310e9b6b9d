package handlers

import "time"

// TemplateFuncs are registered on the html engine
func TemplateFuncs() map[string]interface{} {
	return map[string]interface{}{
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"formatDateTime": func(t time.Time) string {
			return t.Format("2006-01-02 15:04:05")
		},
	}
}
