package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// readArrayValue decodes a {"value": ...} body. The value may be any JSON
// value, null included, but the field must be present.
func readArrayValue(w http.ResponseWriter, r *http.Request) (any, bool) {
	var body map[string]json.RawMessage
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body)
	raw, ok := body["value"]
	if err != nil || !ok {
		writeError(w, http.StatusBadRequest, "body must be a JSON object with a value field")
		return nil, false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid value")
		return nil, false
	}
	return v, true
}

func pathIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "index must be an integer")
		return 0, false
	}
	return i, true
}

func (h *handlers) getArray(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"array": h.deps.Array.All()})
}

func (h *handlers) getArrayValue(w http.ResponseWriter, r *http.Request) {
	i, ok := pathIndex(w, r)
	if !ok {
		return
	}
	v, err := h.deps.Array.Get(i)
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"value": v})
}

func (h *handlers) appendArray(w http.ResponseWriter, r *http.Request) {
	v, ok := readArrayValue(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"array": h.deps.Array.Append(v)})
}

func (h *handlers) updateArray(w http.ResponseWriter, r *http.Request) {
	i, ok := pathIndex(w, r)
	if !ok {
		return
	}
	v, ok := readArrayValue(w, r)
	if !ok {
		return
	}
	if err := h.deps.Array.Update(i, v); err != nil {
		writeServiceError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"index": i, "value": v})
}

func (h *handlers) deleteLast(w http.ResponseWriter, _ *http.Request) {
	last, rest, err := h.deps.Array.DeleteLast()
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": last, "array": rest})
}

func (h *handlers) resetArray(w http.ResponseWriter, r *http.Request) {
	i, ok := pathIndex(w, r)
	if !ok {
		return
	}
	rest, err := h.deps.Array.Reset(i)
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"index": i, "array": rest})
}
