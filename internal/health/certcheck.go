package health

import (
	"crypto/tls"
	"fmt"
	"net"
	"time"
)

// CheckCertExpiry connects to host:443 and returns the expiry time of the
// leaf certificate presented during the handshake.
func CheckCertExpiry(host string) (time.Time, error) {
	dialer := &net.Dialer{Timeout: 10 * time.Second}

	conn, err := tls.DialWithDialer(dialer, "tcp", host+":443", nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to connect to %s: %w", host, err)
	}
	defer conn.Close()

	certs := conn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return time.Time{}, fmt.Errorf("no certificates presented by %s", host)
	}

	return certs[0].NotAfter, nil
}
