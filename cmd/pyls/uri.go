package main

import (
	"net/url"
	"strings"
)

// localPathPrefix encodes unrooted paths: an
// unrooted path p becomes file:///LOCAL-PATH/<p> with backslashes
// normalised to forward slashes.
const localPathPrefix = "/LOCAL-PATH/"

func pathToURI(path string) string {
	p := strings.ReplaceAll(path, `\`, "/")
	if !strings.HasPrefix(p, "/") {
		return "file://" + localPathPrefix + p
	}
	return "file://" + p
}

func uriToPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return uri
	}
	p := u.Path
	if strings.HasPrefix(p, localPathPrefix) {
		return strings.TrimPrefix(p, localPathPrefix)
	}
	return p
}
