package catalog

import "encoding/json"

func jsonBody(p Product) (json.RawMessage, error) {
	return json.Marshal(productDoc{Title: p.Title, Price: p.Price, Image: p.Image, Category: p.Category})
}
