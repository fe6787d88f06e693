package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/hydrowatch/watermap/internal/allocation"
	"github.com/hydrowatch/watermap/internal/domain"
	"github.com/hydrowatch/watermap/internal/graph"
	"github.com/hydrowatch/watermap/internal/inp"
)

// mapResponse is the render snapshot consumed by the map front end.
type mapResponse struct {
	Markers   []domain.Node `json:"markers"`
	Polylines []domain.Edge `json:"polylines"`
}

func (s *Server) handleMap(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, mapResponse{
		Markers:   s.deps.Nodes.All(),
		Polylines: s.deps.Edges.All(),
	})
}

// addMarkerRequest carries the entry form's raw text inputs.
type addMarkerRequest struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	PopUp     string `json:"popUp"`
}

func (s *Server) handleAddMarker(w http.ResponseWriter, r *http.Request) {
	var req addMarkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	node, err := s.deps.Graph.AddNode(req.Latitude, req.Longitude, req.PopUp)
	if err != nil {
		if domain.IsValidation(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.logger.Error("add marker failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, node)
}

// addPolylineRequest carries both pending endpoints in text form.
type addPolylineRequest struct {
	Start graph.Coords `json:"start"`
	End   graph.Coords `json:"end"`
}

func (s *Server) handleAddPolyline(w http.ResponseWriter, r *http.Request) {
	var req addPolylineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	edge, err := s.deps.Graph.AddEdge(req.Start, req.End)
	if err != nil {
		if domain.IsValidation(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.logger.Error("add polyline failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, edge)
}

// selectPointRequest is a click event routed into the pending selection.
// Map clicks carry role "start", marker clicks role "end".
type selectPointRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Role      string  `json:"role"`
}

func (s *Server) handleSelectPoint(w http.ResponseWriter, r *http.Request) {
	var req selectPointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var role graph.SlotRole
	switch req.Role {
	case "start", "":
		role = graph.RoleStart
	case "end":
		role = graph.RoleEnd
	default:
		writeError(w, http.StatusBadRequest, "role must be \"start\" or \"end\"")
		return
	}

	s.deps.Graph.SelectPoint(domain.GeoPoint{Lat: req.Latitude, Lon: req.Longitude}, role)
	writeJSON(w, http.StatusOK, s.deps.Graph.Selection())
}

func (s *Server) handleGetSelection(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Graph.Selection())
}

// setLabelRequest carries the entry form's in-progress marker label.
type setLabelRequest struct {
	Label string `json:"label"`
}

func (s *Server) handleSetLabel(w http.ResponseWriter, r *http.Request) {
	var req setLabelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.deps.Graph.SetLabel(req.Label)
	writeJSON(w, http.StatusOK, s.deps.Graph.Selection())
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	s.deps.Export.ExportAll()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// zoomPolicyResponse answers both clustering questions in one call: the mode
// for the current zoom and the icon visual for a cluster's marker count.
type zoomPolicyResponse struct {
	Mode   domain.ClusteringMode `json:"mode"`
	Visual domain.ClusterVisual  `json:"visual"`
}

func (s *Server) handleZoomPolicy(w http.ResponseWriter, r *http.Request) {
	zoom, err := strconv.Atoi(r.URL.Query().Get("zoom"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "zoom must be an integer")
		return
	}
	count := 0
	if raw := r.URL.Query().Get("count"); raw != "" {
		count, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "count must be an integer")
			return
		}
	}

	writeJSON(w, http.StatusOK, zoomPolicyResponse{
		Mode:   domain.ModeForZoom(zoom),
		Visual: domain.VisualForCount(count),
	})
}

// maxINPUploadSize caps the in-memory portion of a network file upload.
const maxINPUploadSize = 10 << 20

func (s *Server) handleSensorAllocation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxINPUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "No file part")
		return
	}

	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		// A part submitted with an empty filename parses as a form value,
		// not a file: the user hit upload without choosing a file.
		if _, ok := r.MultipartForm.Value["file"]; ok {
			writeError(w, http.StatusBadRequest, "No selected file")
			return
		}
		writeError(w, http.StatusBadRequest, "No file part")
		return
	}

	header := headers[0]
	file, err := header.Open()
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file part")
		return
	}
	defer file.Close()

	start := time.Now()
	network, err := inp.ParseNetwork(file, s.deps.ElevationThreshold)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result := allocation.Allocate(network)
	s.deps.Metrics.AllocationRuns.Inc()
	s.deps.Metrics.AllocationDuration.Observe(time.Since(start).Seconds())

	s.logger.Info("sensor allocation complete",
		"file", header.Filename,
		"junctions", len(network),
		"sensors", len(result.Sensors),
	)
	writeJSON(w, http.StatusOK, result)
}

// geocodeResponse is the label suggestion for a clicked point.
type geocodeResponse struct {
	Suggestion       string  `json:"suggestion"`
	FormattedAddress string  `json:"formatted_address"`
	Confidence       float64 `json:"confidence"`
}

func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	if s.deps.Geocoder == nil {
		writeError(w, http.StatusServiceUnavailable, "geocoding is not enabled")
		return
	}

	lat, err := strconv.ParseFloat(r.URL.Query().Get("latitude"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "latitude must be a number")
		return
	}
	lon, err := strconv.ParseFloat(r.URL.Query().Get("longitude"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "longitude must be a number")
		return
	}

	start := time.Now()
	result, err := s.deps.Geocoder.ReverseGeocode(r.Context(), lat, lon)
	s.deps.Metrics.GeocodeAPIDuration.WithLabelValues("reverse").Observe(time.Since(start).Seconds())
	if err != nil {
		s.deps.Metrics.GeocodeRequests.WithLabelValues("reverse", "error").Inc()
		s.logger.Warn("reverse geocoding failed", "lat", lat, "lon", lon, "error", err)
		writeError(w, http.StatusBadGateway, "geocoding failed")
		return
	}
	if result.FormattedAddress == "" {
		s.deps.Metrics.GeocodeRequests.WithLabelValues("reverse", "empty").Inc()
		writeError(w, http.StatusNotFound, "no place found")
		return
	}

	s.deps.Metrics.GeocodeRequests.WithLabelValues("reverse", "success").Inc()
	writeJSON(w, http.StatusOK, geocodeResponse{
		Suggestion:       result.PlaceName,
		FormattedAddress: result.FormattedAddress,
		Confidence:       result.Confidence,
	})
}
