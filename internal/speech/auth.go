package speech

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"time"
)

// Credentials are the three iFlytek secrets. All of them are required before a
// connection is attempted.
type Credentials struct {
	AppID     string
	APIKey    string
	APISecret string
}

func (c Credentials) complete() bool {
	return c.AppID != "" && c.APIKey != "" && c.APISecret != ""
}

// SignedURL builds the authenticated wss:// connection URL. The signature is
// HMAC-SHA256 over "host: <host>\ndate: <date>\nGET <path> HTTP/1.1" keyed by
// the API secret, with the date in RFC-1123 GMT form. The canonical string and
// encoding order are exact wire-format requirements of the recognizer.
func SignedURL(host, path string, creds Credentials, now time.Time) string {
	date := now.UTC().Format("Mon, 02 Jan 2006 15:04:05 GMT")

	origin := fmt.Sprintf("host: %s\ndate: %s\nGET %s HTTP/1.1", host, date, path)
	mac := hmac.New(sha256.New, []byte(creds.APISecret))
	mac.Write([]byte(origin))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	authOrigin := fmt.Sprintf(
		`api_key="%s", algorithm="hmac-sha256", headers="host date request-line", signature="%s"`,
		creds.APIKey, signature,
	)
	authorization := base64.StdEncoding.EncodeToString([]byte(authOrigin))

	query := url.Values{}
	query.Set("authorization", authorization)
	query.Set("date", date)
	query.Set("host", host)

	return fmt.Sprintf("wss://%s%s?%s", host, path, query.Encode())
}
