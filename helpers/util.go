package helpers

import (
	"errors"
	"strings"
)

func GetSplitPart(target string, separate string, index int) (string, error) {
	parts := strings.Split(target, separate)
	if index >= len(parts) {
		return "", errors.New("index out of range")
	}
	return parts[index], nil
}

// ResolveURL turns a root-relative link into an absolute one on baseURL
func ResolveURL(baseURL, link string) string {
	link = strings.TrimSpace(link)
	if strings.HasPrefix(link, "//") {
		return "https:" + link
	}
	if strings.HasPrefix(link, "/") {
		return strings.TrimRight(baseURL, "/") + link
	}
	return link
}
