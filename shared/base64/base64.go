package base64

import "strings"

const dataURIPrefix = "data:"

// GetContentType returns the mime type of a base64 data URI, or an empty string.
func GetContentType(file string) string {
	if !strings.HasPrefix(file, dataURIPrefix) {
		return ""
	}

	end := strings.Index(file, ";base64,")
	if end == -1 {
		return ""
	}

	return file[len(dataURIPrefix):end]
}
