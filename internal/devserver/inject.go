package devserver

import (
	"bytes"
	"fmt"
)

// ClientScriptURL is the socket.io browser client loaded by injected pages.
const ClientScriptURL = "https://cdn.socket.io/4.7.5/socket.io.min.js"

// ReloadEvent is the socket.io event that makes clients reload.
const ReloadEvent = "reload"

// snippet returns the markup injected into served HTML pages.
func snippet() []byte {
	return []byte(fmt.Sprintf(
		`<script src=%q></script>`+
			`<script>io({path:%q}).on(%q,function(){location.reload()});</script>`,
		ClientScriptURL, SocketPath, ReloadEvent))
}

var closingBody = []byte("</body>")

// inject inserts the reload snippet before the last closing body tag, or
// appends it when the page has none.
func inject(page []byte) []byte {
	s := snippet()
	i := bytes.LastIndex(bytes.ToLower(page), closingBody)
	if i < 0 {
		return append(append([]byte{}, page...), s...)
	}
	out := make([]byte, 0, len(page)+len(s))
	out = append(out, page[:i]...)
	out = append(out, s...)
	return append(out, page[i:]...)
}
