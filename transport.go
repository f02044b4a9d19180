package ldapcore

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// dialTransport opens the byte-stream transport named by uri: ldap://
// (plaintext TCP, default port 389), ldaps:// (TLS, default port 636)
// or ldapi:// (a percent-encoded Unix domain socket path). It returns
// the connected stream along with the host string a SASL provider
// should bind against.
func dialTransport(uri string, timeout time.Duration) (net.Conn, string, error) {
	// url.Parse rejects %-escapes such as %2F in a host, so an ldapi://
	// URI is parsed in its opaque form and the path unescaped below.
	if rest, ok := strings.CutPrefix(uri, "ldapi://"); ok {
		uri = "ldapi:" + rest
	}
	u, err := url.Parse(uri)
	if err != nil {
		return nil, "", &ConnectionError{Op: "dial", Err: err}
	}

	switch u.Scheme {
	case "ldap":
		host := hostWithDefaultPort(u.Host, "389")
		c, err := net.DialTimeout("tcp", host, timeout)
		if err != nil {
			return nil, "", &ConnectionError{Op: "dial", Err: err}
		}
		return c, u.Hostname(), nil

	case "ldaps":
		host := hostWithDefaultPort(u.Host, "636")
		dialer := &net.Dialer{Timeout: timeout}
		c, err := tls.DialWithDialer(dialer, "tcp", host, &tls.Config{ServerName: u.Hostname()})
		if err != nil {
			return nil, "", &ConnectionError{Op: "dial", Err: err}
		}
		return c, u.Hostname(), nil

	case "ldapi":
		path, err := url.PathUnescape(u.Opaque)
		if err != nil || path == "" {
			path, err = url.PathUnescape(u.Path)
			if err != nil {
				return nil, "", &ConnectionError{Op: "dial", Err: err}
			}
		}
		c, err := net.DialTimeout("unix", path, timeout)
		if err != nil {
			return nil, "", &ConnectionError{Op: "dial", Err: err}
		}
		return c, "localhost", nil

	default:
		return nil, "", &ConnectionError{Op: "dial", Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}
}

func hostWithDefaultPort(host, defaultPort string) string {
	if host == "" {
		return "localhost:" + defaultPort
	}
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	if strings.Contains(host, ":") && !strings.HasSuffix(host, "]") {
		return host
	}
	return host + ":" + defaultPort
}

// startTLSExtendedOID is the StartTLS extended operation OID
// (RFC 4511, spec.md 6).
const startTLSExtendedOID = "1.3.6.1.4.1.1466.20037"

// disconnectNoticeOID identifies the unsolicited notification a server
// sends to signal it is about to close the connection (spec.md 4.6).
const disconnectNoticeOID = "1.3.6.1.4.1.1466.20036"

func upgradeToTLS(conn net.Conn, serverName string) (net.Conn, error) {
	tlsConn := tls.Client(conn, &tls.Config{ServerName: serverName})
	if err := tlsConn.Handshake(); err != nil {
		return nil, &ConnectionError{Op: "starttls", Err: err}
	}
	return tlsConn, nil
}
