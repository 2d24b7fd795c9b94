package blob_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "car-catalog/pkg/common/errors"
	"car-catalog/pkg/core/blob"
	"car-catalog/pkg/core/blob/blobtest"
	"car-catalog/pkg/core/session"
)

var ana = session.Principal{UserID: "u-ana", Name: "Ana", Email: "ana@x.com"}

func TestUploader_Upload(t *testing.T) {
	store := blobtest.NewMemoryStore()
	up := blob.NewUploader(store, time.Second)

	obj, err := up.Upload(context.Background(), ana, "civic.png", []byte("png"))
	require.NoError(t, err)
	assert.True(t, store.Has(obj.URL))
	assert.Equal(t, int64(3), obj.Size)
	assert.Equal(t, "image/png", obj.ContentType)
}

func TestUploader_Errors(t *testing.T) {
	store := blobtest.NewMemoryStore()
	store.FailPut = func(string) bool { return true }
	up := blob.NewUploader(store, time.Second)
	ctx := context.Background()

	tests := []struct {
		name     string
		p        session.Principal
		filename string
		body     []byte
		kind     apperrors.Kind
		msg      string
	}{
		{"no session", session.Principal{}, "a.png", []byte("x"), apperrors.KindUnauthenticated, "Not Authenticated."},
		{"no filename", ana, "", []byte("x"), apperrors.KindValidation, "Filename is required."},
		{"dot filename", ana, ".", []byte("x"), apperrors.KindValidation, "Filename is required."},
		{"slash filename", ana, "/", []byte("x"), apperrors.KindValidation, "Filename is required."},
		{"no body", ana, "a.png", nil, apperrors.KindValidation, "No file provided."},
		{"store failure", ana, "a.png", []byte("x"), apperrors.KindUpload, "Failed to upload image."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := up.Upload(ctx, tc.p, tc.filename, tc.body)
			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, tc.kind, appErr.Kind)
			assert.Equal(t, tc.msg, appErr.Message)
		})
	}
}
