package live

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketDialer dials url with gorilla/websocket.
func WebSocketDialer(url string, header http.Header) Dialer {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: 10 * time.Second,
	}
	return func(ctx context.Context) (Conn, error) {
		conn, resp, err := dialer.DialContext(ctx, url, header)
		if err != nil {
			if resp != nil {
				return nil, fmt.Errorf("handshake with %s failed (%d): %w", url, resp.StatusCode, err)
			}
			return nil, err
		}
		return conn, nil
	}
}
