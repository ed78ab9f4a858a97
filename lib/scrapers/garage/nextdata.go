package garage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// nextData mirrors the slice of the server-rendered page state blob we care
// about: the deployment build id and the listing preview used to hydrate a
// listing page.
type nextData struct {
	BuildId string `json:"buildId"`
	Props   struct {
		PageProps pageProps `json:"pageProps"`
	} `json:"props"`
}

type pageProps struct {
	ListingPreview *rawListing `json:"listingPreview"`
}

// dataApiResponse is the body of /_next/data/<buildId>/listing/<slug>.json,
// the page props without the surrounding document.
type dataApiResponse struct {
	PageProps pageProps `json:"pageProps"`
}

// parseNextData extracts the embedded page state script from an HTML
// document. The visible markup is never parsed, the state blob is the only
// stable-ish thing about these pages.
func parseNextData(html []byte) (nextData, error) {
	var out nextData

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return out, err
	}

	payload := doc.Find("script#__NEXT_DATA__").First().Text()
	if payload == "" {
		return out, fmt.Errorf("no embedded page state script found")
	}

	err = json.Unmarshal([]byte(payload), &out)
	if err != nil {
		return out, fmt.Errorf("parse embedded page state: %w", err)
	}
	return out, nil
}
