package source

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// signedPageURL builds the signature-version-2 request URL for one page of
// the Top Sites listing. The canonical string to sign is
//
//	GET\n{host}\n{path}\n{sorted query}
//
// with the HMAC-SHA256 digest of it appended as the Signature parameter.
// url.Values.Encode sorts keys, which is exactly the canonical ordering
// the signature scheme requires.
func (c *Client) signedPageURL(page int, now time.Time) (string, error) {
	base, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", c.endpoint, err)
	}

	params := url.Values{}
	params.Set("AWSAccessKeyId", c.accessKeyID)
	params.Set("Action", "TopSites")
	params.Set("Count", strconv.Itoa(c.pageSize))
	params.Set("CountryCode", "US")
	params.Set("ResponseGroup", "Country")
	params.Set("SignatureMethod", "HmacSHA256")
	params.Set("SignatureVersion", "2")
	params.Set("Start", strconv.Itoa(c.pageSize*(page-1)+1))
	params.Set("Timestamp", now.UTC().Format(time.RFC3339))

	query := params.Encode()

	path := base.Path
	if path == "" {
		path = "/"
	}

	toSign := fmt.Sprintf("GET\n%s\n%s\n%s", base.Host, path, query)

	mac := hmac.New(sha256.New, []byte(c.secretKey))
	mac.Write([]byte(toSign))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	signed := url.Values{}
	signed.Set("Signature", signature)

	base.RawQuery = query + "&" + signed.Encode()
	return base.String(), nil
}
