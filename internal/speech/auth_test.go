package speech

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestSignedURLShape(t *testing.T) {
	creds := Credentials{AppID: "app", APIKey: "key", APISecret: "secret"}
	now := time.Date(2026, time.March, 14, 9, 26, 53, 0, time.UTC)

	raw := SignedURL(DefaultHost, DefaultPath, creds, now)

	if !strings.HasPrefix(raw, "wss://"+DefaultHost+DefaultPath+"?") {
		t.Fatalf("unexpected URL prefix: %s", raw)
	}

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("signed URL does not parse: %v", err)
	}
	q := u.Query()

	if got := q.Get("host"); got != DefaultHost {
		t.Errorf("host param = %q", got)
	}
	if got := q.Get("date"); got != "Sat, 14 Mar 2026 09:26:53 GMT" {
		t.Errorf("date param = %q", got)
	}

	decoded, err := base64.StdEncoding.DecodeString(q.Get("authorization"))
	if err != nil {
		t.Fatalf("authorization is not base64: %v", err)
	}
	auth := string(decoded)

	if !strings.Contains(auth, `api_key="key"`) ||
		!strings.Contains(auth, `algorithm="hmac-sha256"`) ||
		!strings.Contains(auth, `headers="host date request-line"`) {
		t.Errorf("authorization missing required fields: %s", auth)
	}

	// Recompute the signature over the canonical string and confirm it is the
	// one embedded in the authorization value.
	origin := fmt.Sprintf("host: %s\ndate: %s\nGET %s HTTP/1.1", DefaultHost, q.Get("date"), DefaultPath)
	mac := hmac.New(sha256.New, []byte(creds.APISecret))
	mac.Write([]byte(origin))
	want := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !strings.Contains(auth, fmt.Sprintf("signature=%q", want)) {
		t.Errorf("authorization does not carry the expected signature: %s", auth)
	}
}

func TestSignedURLUTCDate(t *testing.T) {
	creds := Credentials{AppID: "a", APIKey: "k", APISecret: "s"}
	shanghai := time.FixedZone("CST", 8*3600)
	now := time.Date(2026, time.March, 14, 17, 0, 0, 0, shanghai)

	u, err := url.Parse(SignedURL(DefaultHost, DefaultPath, creds, now))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := u.Query().Get("date"); !strings.HasSuffix(got, "09:00:00 GMT") {
		t.Errorf("date not converted to GMT: %q", got)
	}
}

func TestCredentialsComplete(t *testing.T) {
	if (Credentials{}).complete() {
		t.Error("empty credentials reported complete")
	}
	if (Credentials{AppID: "a", APIKey: "k"}).complete() {
		t.Error("credentials without secret reported complete")
	}
	if !(Credentials{AppID: "a", APIKey: "k", APISecret: "s"}).complete() {
		t.Error("full credentials reported incomplete")
	}
}
