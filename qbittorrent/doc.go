// Package qbittorrent provides a client for keeping qBittorrent's listening
// port in sync through the Web API.
//
// This package wraps the autobrr/go-qbittorrent library to provide the two
// calls portsync needs:
//
//   - Authenticate posts the credentials to /api/v2/auth/login; the Web UI
//     answers "Ok." and sets a session cookie that is reused afterwards. The
//     session is then confirmed with a GET of /api/v2/app/webapiVersion.
//   - UpdatePort posts {"listen_port": N} as the json form field of
//     /api/v2/app/setPreferences; any 200 response counts as success.
//
// # Usage
//
//	client, err := qbittorrent.NewClient(url, username, password, logger,
//	    qbittorrent.WithTimeout(10*time.Second))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := client.Authenticate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	err = client.UpdatePort(ctx, 54321)
package qbittorrent
