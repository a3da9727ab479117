// Package propsync is a Go client for the propsync HTTP API.
//
//	client, _ := propsync.New("http://localhost:8080",
//	    propsync.WithTimeout(30*time.Second),
//	)
//	report, _ := client.Ingest(ctx)
//	props, _ := client.Search(ctx, propsync.Query{
//	    City:     "berlin",
//	    PriceMin: propsync.Float(100),
//	    Extra:    map[string]string{"country": "Germany"},
//	    Limit:    50,
//	})
//
// Extra filters are sent as repeated extra.<field> parameters by default.
// WithEmbeddedExtras packs them into a single extra.* parameter instead;
// the server treats both encodings identically.
package propsync
