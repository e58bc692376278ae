// Package vpnlog discovers the forwarded port announced by a VPN client in its
// rotating log directory.
//
// Discovery happens in two steps that are re-evaluated on every poll:
//
//   - Locator picks the most recently modified regular file in the log
//     directory.
//   - Extractor reads only the tail window of that file and scans it backward
//     for the newest "Port pair N->N" announcement.
//
// # Usage
//
//	locator := vpnlog.NewLocator("/var/log/protonvpn", vpnlog.WithPattern("*.txt"))
//	extractor := vpnlog.NewExtractor(vpnlog.WithWindowSize(8192))
//
//	file, err := locator.Latest()
//	if err != nil {
//	    return err
//	}
//
//	port, err := extractor.Extract(file.Path)
//	if errors.Is(err, vpnlog.ErrNoAnnouncement) {
//	    // nothing announced yet
//	}
package vpnlog
