// Package sdk provides a Go client for the askdex retrieval and answer
// assembly service.
//
//	client := sdk.New("http://localhost:8080", sdk.WithAPIKey("secret"))
//
//	resp, err := client.Search(ctx, sdk.SearchRequest{
//	    Query:         "how do I request PTO",
//	    Identity:      "user-1",
//	    IncludeAnswer: true,
//	})
//
// All methods return *APIError for non-2xx responses; use errors.As to
// inspect the code and HTTP status.
package sdk
