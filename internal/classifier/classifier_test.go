package classifier

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{name: "empty body", body: "", want: false},
		{name: "keyword and amount", body: "Rs. 500 debited from your account", want: true},
		{name: "inr amount and keyword", body: "INR 2500 credited", want: true},
		{name: "rupee symbol only", body: "₹100", want: true},
		{name: "otp message", body: "Your OTP is 4521", want: false},
		{name: "upper case keyword", body: "PAYMENT DUE TOMORROW", want: true},
		{name: "mixed case keyword", body: "Your BaLaNcE is low", want: true},
		{name: "rs inside hours", body: "See you in two hours", want: true},
		{name: "rs inside years", body: "Happy new years!", want: true},
		{name: "plain greeting", body: "Hello, how are you?", want: false},
		{name: "upi keyword", body: "UPI ref 1234 done", want: true},
		{name: "atm keyword", body: "Visit the nearest ATM", want: true},
		{name: "whitespace only", body: "   ", want: false},
		{name: "digits only", body: "123456", want: false},
		{name: "non utf8 bytes", body: string([]byte{0xff, 0xfe, 0x41}), want: false},
		{name: "long s does not fold to s", body: "Rſ 500", want: false},
		{name: "dotted capital i keeps its dot", body: "İNR due", want: false},
		{name: "kelvin sign lowers to k", body: "BAN\u212A closed", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.body))
		})
	}
}

func TestClassify_EveryKeywordInAnyCase(t *testing.T) {
	for _, kw := range Keywords() {
		for _, variant := range []string{kw, strings.ToUpper(kw), strings.Title(kw)} {
			body := "prefix " + variant + " suffix"
			assert.True(t, Classify(body), "keyword %q in %q", kw, body)
			assert.True(t, Classify(variant), "bare keyword %q", variant)
		}
	}
}

func TestClassify_NoKeywordNoAmount(t *testing.T) {
	bodies := []string{
		"Your OTP is 4521",
		"Meeting moved to 5pm",
		"Call me back",
		"Delivery scheduled for Monday",
	}

	for _, body := range bodies {
		lower := strings.ToLower(body)
		for _, kw := range Keywords() {
			require.NotContains(t, lower, kw, "fixture %q must not contain a keyword", body)
		}
		require.False(t, HasAmount(body))
		assert.False(t, Classify(body), body)
	}
}

func TestAmountPattern(t *testing.T) {
	tests := []struct {
		body string
		want bool
	}{
		{"₹100", true},
		{"₹ 100", true},
		{"Rs.500", true},
		{"rs 500", true},
		{"RS.   42", true},
		{"INR2500", true},
		{"inr 7", true},
		{"Rs\v500", true},
		{"Rſ 500", false},
		{"İNR 500", false},
		{"Rs ５００", false},
		{"Rs. five hundred", false},
		{"₹", false},
		{"USD 100", false},
		{"total 100", false},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			assert.Equal(t, tt.want, HasAmount(tt.body))
		})
	}
}

func TestExplain(t *testing.T) {
	v := Explain("")
	assert.False(t, v.IsTransaction)
	assert.Equal(t, ReasonEmpty, v.Reason)

	v = Explain("Amount Rs. 500 debited")
	assert.True(t, v.IsTransaction)
	assert.Equal(t, ReasonKeyword, v.Reason)
	assert.Equal(t, "debited", v.Keyword)

	v = Explain("Your OTP is 4521")
	assert.False(t, v.IsTransaction)
	assert.Equal(t, ReasonNone, v.Reason)
}

func TestExplain_AgreesWithClassify(t *testing.T) {
	bodies := []string{
		"", "₹100", "Your OTP is 4521", "INR 2500 credited",
		"two hours later", "hello", "Rs.10", "nothing here",
	}
	for _, body := range bodies {
		assert.Equal(t, Classify(body), Explain(body).IsTransaction, body)
	}
}

func TestExplain_NonASCIIFolding(t *testing.T) {
	v := Explain("Rſ 500")
	assert.Equal(t, ReasonNone, v.Reason)
	assert.Empty(t, v.Amount)

	v = Explain("İNR due")
	assert.Equal(t, ReasonNone, v.Reason)
	assert.Empty(t, v.Keyword)
}

func TestClassify_BothPathsAgree(t *testing.T) {
	body := "INR 2500 credited"
	_, keywordHit := matchKeyword(body)
	assert.True(t, keywordHit)
	assert.True(t, HasAmount(body))
	assert.True(t, Classify(body))
}

func TestClassify_Idempotent(t *testing.T) {
	bodies := []string{"", "₹100", "Your OTP is 4521", "Rs. 500 debited"}
	for _, body := range bodies {
		first := Classify(body)
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, Classify(body))
		}
	}
}

func TestClassify_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.True(t, Classify("Rs. 500 debited"))
				assert.False(t, Classify("Your OTP is 4521"))
			}
		}()
	}
	wg.Wait()
}

func TestKeywords_ReturnsCopy(t *testing.T) {
	kws := Keywords()
	require.Len(t, kws, 21)
	kws[0] = "mutated"
	assert.Equal(t, "debited", Keywords()[0])
}
