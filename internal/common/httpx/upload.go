package httpx

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"restaurant-ordering/internal/domain"
)

// ReadUpload pulls a single file out of a multipart form. The content type
// is sniffed from the bytes, not taken from the client.
func ReadUpload(w http.ResponseWriter, r *http.Request, field string, max int64) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, max+(64<<10))
	f, _, err := r.FormFile(field)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, "", domain.Invalid(fmt.Sprintf("upload exceeds %d bytes", max))
		}
		return nil, "", domain.Invalid(fmt.Sprintf("missing %q file field", field))
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, max+1))
	if err != nil {
		return nil, "", domain.Invalid("could not read upload")
	}
	if int64(len(data)) > max {
		return nil, "", domain.Invalid(fmt.Sprintf("upload exceeds %d bytes", max))
	}
	return data, http.DetectContentType(data), nil
}
