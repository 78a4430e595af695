// Package docs provides the Google Docs operations used to fill the
// submission template: replacing placeholder tokens in a working copy and
// scanning a document's text for the tokens it contains.
//
// Example usage:
//
//	client, err := docs.NewClient(ctx, google.NewFileTokenProvider("default"), metrics)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	n, err := client.ReplaceAllText(ctx, "1ABC123xyz", []docs.Replacement{
//	    {Find: "{Email}", Replace: "bob@example.com"},
//	})
package docs
