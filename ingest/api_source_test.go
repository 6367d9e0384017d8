package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camden-git/cropsysbackend/catalog"
	"github.com/camden-git/cropsysbackend/classify"
)

const testBase = "https://records.example.com/api"

func newMockedSource(t *testing.T) *APISource {
	t.Helper()
	client := &http.Client{}
	httpmock.ActivateNonDefault(client)
	t.Cleanup(httpmock.DeactivateAndReset)
	return NewAPISource(testBase+"/", client)
}

func TestFetchAllUsesCacheBuster(t *testing.T) {
	src := newMockedSource(t)

	var sawTS bool
	httpmock.RegisterResponder(http.MethodGet, testBase+"/images",
		func(req *http.Request) (*http.Response, error) {
			sawTS = req.URL.Query().Get("ts") != ""
			return httpmock.NewJsonResponse(200, []RawRecord{
				{ID: 1, DiseaseLabel: "Anthracnose", Confidence: 0.92, UploadedAt: time.Now()},
			})
		})

	images, err := src.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.True(t, sawTS, "fetch must carry a cache-busting ts parameter")
	assert.Equal(t, classify.TypeLeaf, images[0].Type)
	assert.InDelta(t, 92.0, images[0].Confidence, 1e-9)
}

func TestFetchAllSurfacesAuthFailure(t *testing.T) {
	src := newMockedSource(t)
	httpmock.RegisterResponder(http.MethodGet, testBase+"/images",
		httpmock.NewStringResponder(401, "unauthenticated"))

	_, err := src.FetchAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSetVerifiedSendsOneBatch(t *testing.T) {
	src := newMockedSource(t)

	var got struct {
		IDs      []uint `json:"ids"`
		Verified bool   `json:"verified"`
	}
	httpmock.RegisterResponder(http.MethodPatch, testBase+"/images/batch",
		func(req *http.Request) (*http.Response, error) {
			if err := json.NewDecoder(req.Body).Decode(&got); err != nil {
				return httpmock.NewStringResponse(400, err.Error()), nil
			}
			return httpmock.NewStringResponse(200, "{}"), nil
		})

	err := src.SetVerified(context.Background(), []uint{1, 2, 3}, true)
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2, 3}, got.IDs)
	assert.True(t, got.Verified)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestDeleteIsPerResource(t *testing.T) {
	src := newMockedSource(t)
	httpmock.RegisterResponder(http.MethodDelete, testBase+"/images/7",
		httpmock.NewStringResponder(204, ""))

	require.NoError(t, src.Delete(context.Background(), 7))

	httpmock.RegisterResponder(http.MethodDelete, testBase+"/images/8",
		httpmock.NewStringResponder(500, "boom"))
	assert.Error(t, src.Delete(context.Background(), 8))
}

func TestFetchImageDataResolvesRelativeURLs(t *testing.T) {
	src := newMockedSource(t)
	httpmock.RegisterResponder(http.MethodGet, testBase+"/uploads/a.jpg",
		httpmock.NewBytesResponder(200, []byte{0xFF, 0xD8}))

	data, err := src.FetchImageData(context.Background(), catalog.Image{ID: 1, URL: "/uploads/a.jpg"})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xD8}, data)
}
