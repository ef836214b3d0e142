package ecb_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fxmirror/fxmirror/internal/adapters/feed/ecb"
	"github.com/fxmirror/fxmirror/internal/apperrors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `<?xml version="1.0" encoding="UTF-8"?>
<gesmes:Envelope xmlns:gesmes="http://www.gesmes.org/xml/2002-08-01" xmlns="http://www.ecb.int/vocabulary/2002-08-01/eurofxref">
	<gesmes:subject>Reference rates</gesmes:subject>
	<gesmes:Sender>
		<gesmes:name>European Central Bank</gesmes:name>
	</gesmes:Sender>
	<Cube>
		<Cube time="2025-04-04">
			<Cube currency="USD" rate="1.1057"/>
			<Cube currency="JPY" rate="160.31"/>
			<Cube currency="TRY" rate="38.75"/>
		</Cube>
	</Cube>
</gesmes:Envelope>`

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ecb.Options) *ecb.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	opts.FeedURL = server.URL
	return ecb.NewClient(opts)
}

func TestFetchSnapshotParsesDocument(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(sampleDocument))
	}, ecb.Options{})

	snapshot, err := client.FetchSnapshot(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "2025-04-04", snapshot.AsOf.Format("2006-01-02"))
	require.Len(t, snapshot.Rates, 3)
	assert.True(t, snapshot.Rates["USD"].Equal(decimal.RequireFromString("1.1057")))
	assert.True(t, snapshot.Rates["TRY"].Equal(decimal.RequireFromString("38.75")))
}

func TestFetchSnapshotNonOKStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, ecb.Options{})

	_, err := client.FetchSnapshot(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}

func TestFetchSnapshotMalformedDocument(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<Envelope><Cube>"))
	}, ecb.Options{})

	_, err := client.FetchSnapshot(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}

func TestFetchSnapshotMissingDatedCube(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<Envelope><Cube></Cube></Envelope>`))
	}, ecb.Options{})

	_, err := client.FetchSnapshot(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}

func TestFetchSnapshotBadRateValue(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<Envelope><Cube><Cube time="2025-04-04"><Cube currency="USD" rate="n/a"/></Cube></Cube></Envelope>`))
	}, ecb.Options{})

	_, err := client.FetchSnapshot(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}

func TestFetchSnapshotTimeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(sampleDocument))
	}, ecb.Options{Timeout: 20 * time.Millisecond})

	_, err := client.FetchSnapshot(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}
