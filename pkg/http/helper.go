package http

import (
	"net/http"
	"strconv"

	"voicebooking/pkg/config"
	apperrors "voicebooking/pkg/errors"
)

func ExtractLimit(r *http.Request) (int, error) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}
	return config.NormalizePaginationLimit(limit), nil
}
