package windowmock

import (
	"fmt"
	"strings"

	"github.com/Maxwellism/browserfakes/object"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

func newDocument(src, documentURL string) (object.Object, error) {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("windowmock: parse html: %w", err)
	}

	title := ""
	if n := htmlquery.FindOne(root, "//head/title"); n != nil {
		title = strings.TrimSpace(htmlquery.InnerText(n))
	}
	lang := ""
	if n := htmlquery.FindOne(root, "//html"); n != nil {
		lang = htmlquery.SelectAttr(n, "lang")
	}
	body := object.Object{"textContent": "", "innerHTML": "", "className": ""}
	if n := htmlquery.FindOne(root, "//body"); n != nil {
		body["textContent"] = htmlquery.InnerText(n)
		body["innerHTML"] = htmlquery.OutputHTML(n, false)
		body["className"] = htmlquery.SelectAttr(n, "class")
	}

	return object.Object{
		"title":           title,
		"URL":             documentURL,
		"documentURI":     documentURL,
		"referrer":        "",
		"cookie":          "",
		"readyState":      "complete",
		"visibilityState": "visible",
		"hidden":          false,
		"characterSet":    "UTF-8",
		"contentType":     "text/html",
		"documentElement": object.Object{"lang": lang},
		"head":            object.Object{"title": title},
		"body":            body,
	}, nil
}
