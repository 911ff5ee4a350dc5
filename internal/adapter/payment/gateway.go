package payment

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const merchantBaseURL = "https://auth.robokassa.ru/Merchant/Index.aspx"

// Gateway abstracts payment link generation and callback verification.
type Gateway interface {
	CreateLink(orderID string, amount float64, description string, payerID int64) string
	VerifyCallback(params map[string]string, orderID string, amount float64) bool
}

// Merchant implements Gateway against a Robokassa-compatible scheme:
// signatures are md5 digests over colon-joined parameters and shared secrets.
type Merchant struct {
	login     string
	password1 string
	password2 string
	testMode  bool
}

// NewMerchant builds a Merchant gateway with the given credentials.
func NewMerchant(login, password1, password2 string, testMode bool) *Merchant {
	return &Merchant{
		login:     login,
		password1: password1,
		password2: password2,
		testMode:  testMode,
	}
}

// CreateLink generates a signed payment URL for the order.
func (m *Merchant) CreateLink(orderID string, amount float64, description string, payerID int64) string {
	if len(description) > 100 {
		description = description[:100]
	}

	payer := strconv.FormatInt(payerID, 10)
	signature := fmt.Sprintf("%s:%s:%s:%s", m.login, formatAmount(amount), orderID, m.password1)
	signature += ":Shp_userId=" + payer
	if m.testMode {
		signature += ":Shp_test=1"
	}

	params := url.Values{}
	params.Set("MerchantLogin", m.login)
	params.Set("OutSum", formatAmount(amount))
	params.Set("InvId", orderID)
	params.Set("Description", description)
	params.Set("SignatureValue", md5hex(signature))
	params.Set("Shp_userId", payer)
	if m.testMode {
		params.Set("IsTest", "1")
		params.Set("Shp_test", "1")
	}

	return merchantBaseURL + "?" + params.Encode()
}

// VerifyCallback checks the callback signature against the shared secret.
// Custom Shp_ parameters participate in key order; comparison is
// case-insensitive per the merchant protocol.
func (m *Merchant) VerifyCallback(params map[string]string, orderID string, amount float64) bool {
	supplied := params["SignatureValue"]
	if supplied == "" {
		return false
	}

	signature := fmt.Sprintf("%s:%s:%s", formatAmount(amount), orderID, m.password2)

	keys := make([]string, 0, len(params))
	for key := range params {
		if strings.HasPrefix(key, "Shp_") {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		signature += fmt.Sprintf(":%s=%s", key, params[key])
	}

	expected := strings.ToLower(md5hex(signature))
	got := strings.ToLower(supplied)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

func md5hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
