// Package drive provides a client for the Google Drive operations handoff
// needs: creating and sharing participant folders, copying the submission
// template, exporting Google Docs to PDF, uploading the rendered file and
// moving working copies to the trash.
//
// Missing and trashed files are both reported as ErrNotFound, so callers can
// treat a folder the user deleted the same way as one that never existed.
//
// Example usage:
//
//	client, err := drive.NewClient(ctx, google.NewFileTokenProvider("default"), metrics)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	folder, err := client.CreateFolder(ctx, "alice bob Handoff", nil)
package drive
