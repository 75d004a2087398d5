package issuance

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const payout = "0x52908400098527886E0F7030069857D2E4169EE7"

func testClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(srv.URL, "test-key"), srv
}

func TestCreateTokenSuccess(t *testing.T) {
	client, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/tokens/deploy" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Error("missing api key header")
		}
		fmt.Fprint(w, `{"tx_hash":"0xtx","contract_address":"0x1111111111111111111111111111111111111111"}`)
	})
	defer srv.Close()

	result, err := client.CreateToken(context.Background(), TokenRequest{
		Name: "Test", Symbol: "TST", MetadataURI: "ipfs://x", PayoutRecipient: payout,
	})
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	if result.TxHash != "0xtx" {
		t.Errorf("tx = %q", result.TxHash)
	}
}

func TestCreateTokenMetadataNotFoundIsTransient(t *testing.T) {
	client, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"error":"Metadata fetch failed: URI not found","code":"metadata_not_found"}`)
	})
	defer srv.Close()

	_, err := client.CreateToken(context.Background(), TokenRequest{
		Name: "Test", Symbol: "TST", PayoutRecipient: payout,
	})
	if !IsTransientMetadata(err) {
		t.Fatalf("err = %v, want transient metadata classification", err)
	}
}

func TestCreateTokenDetailHeuristic(t *testing.T) {
	// No structured code, but the detail text names a propagation failure.
	client, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":"metadata has not yet propagated to gateways"}`)
	})
	defer srv.Close()

	_, err := client.CreateToken(context.Background(), TokenRequest{
		Name: "Test", Symbol: "TST", PayoutRecipient: payout,
	})
	if !IsTransientMetadata(err) {
		t.Fatalf("err = %v, want transient", err)
	}
}

func TestCreateTokenOtherFailuresArePermanent(t *testing.T) {
	client, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"symbol already taken","code":"symbol_conflict"}`)
	})
	defer srv.Close()

	_, err := client.CreateToken(context.Background(), TokenRequest{
		Name: "Test", Symbol: "TST", PayoutRecipient: payout,
	})
	if err == nil || IsTransientMetadata(err) {
		t.Fatalf("err = %v, want permanent", err)
	}
}

func TestCreateTokenRejectsBadRecipientLocally(t *testing.T) {
	called := false
	client, srv := testClient(func(w http.ResponseWriter, r *http.Request) { called = true })
	defer srv.Close()

	_, err := client.CreateToken(context.Background(), TokenRequest{
		Name: "Test", Symbol: "TST", PayoutRecipient: "not-an-address",
	})
	if err == nil || IsTransientMetadata(err) {
		t.Fatalf("err = %v, want permanent", err)
	}
	if called {
		t.Error("request must not leave the process with a bad recipient")
	}
}

func TestViewerURL(t *testing.T) {
	got := ViewerURL("https://zora.co/coin", "0xabc", "")
	if got != "https://zora.co/coin/0xabc" {
		t.Errorf("got %q", got)
	}
	got = ViewerURL("https://zora.co/coin", "0xabc", "0xref")
	if got != "https://zora.co/coin/0xabc?referrer=0xref" {
		t.Errorf("got %q", got)
	}
}
