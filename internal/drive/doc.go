// Package drive provides a client for the Google Drive v3 API.
//
// The client covers the file operations exposed as tools:
//   - Listing and full-text searching files
//   - Reading file metadata, exporting native documents and downloading content
//   - Creating files and folders
//   - Deleting files
//   - Sharing files through permissions
//
// A Client carries no credentials of its own. Callers build it with an
// authenticated HTTP client:
//
//	hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
//	client, err := drive.NewClient(ctx, option.WithHTTPClient(hc))
//	if err != nil {
//	    return err
//	}
//
//	files, err := client.ListFiles(ctx, &drive.ListOptions{
//	    Query:    drive.FullTextQuery("quarterly report"),
//	    PageSize: 10,
//	})
//
// Handlers depend on the API interface so tests can substitute a fake.
package drive
