package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playperu/bollyquiz/internal/game"
)

// HealthResponse documents the /healthz body, keyed by dependency name.
type HealthResponse map[string]struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type gamePath struct {
	ID string `path:"id" description:"Game ID returned by POST /api/games."`
}

type operation struct {
	method, path, summary, description string

	req  any
	resp []response
}

type response struct {
	status      int
	body        any
	contentType string
}

func respOK(body any) response       { return response{status: http.StatusOK, body: body} }
func respCreated(body any) response  { return response{status: http.StatusCreated, body: body} }
func respError(code int) response    { return response{status: code, body: ErrorResponse{}} }
func respStream(ct string) response  { return response{status: http.StatusOK, contentType: ct} }
func respNoContent() response        { return response{status: http.StatusNoContent} }
func respSwitching() response        { return response{status: http.StatusSwitchingProtocols, contentType: "text/plain"} }
func respUnavailable(b any) response { return response{status: http.StatusServiceUnavailable, body: b} }

var operations = []operation{
	{
		method: http.MethodGet, path: "/healthz",
		summary:     "Health check",
		description: "Returns the health status of backend dependencies.",
		resp:        []response{respOK(HealthResponse{}), respUnavailable(HealthResponse{})},
	},
	{
		method: http.MethodGet, path: "/api/categories",
		summary:     "List categories",
		description: "Distinct question categories offered on the setup screen.",
		resp:        []response{respOK(CategoriesResponse{}), respError(http.StatusServiceUnavailable)},
	},
	{
		method: http.MethodPost, path: "/api/setup/validate",
		summary:     "Validate setup",
		description: "Checks a setup payload without starting a game.",
		req:         StartGameRequest{},
		resp:        []response{respOK(ValidateResponse{}), respError(http.StatusBadRequest)},
	},
	{
		method: http.MethodPost, path: "/api/games",
		summary:     "Start game",
		description: "Validates the setup, loads questions and starts a game on its first question.",
		req:         StartGameRequest{},
		resp: []response{
			respCreated(GameResponse{}),
			respError(http.StatusBadRequest),
			respError(http.StatusUnprocessableEntity),
			respError(http.StatusServiceUnavailable),
		},
	},
	{
		method: http.MethodGet, path: "/api/games/{id}",
		summary:     "Game state",
		description: "Current state snapshot. Options and hint appear once revealed.",
		req:         gamePath{},
		resp:        []response{respOK(GameResponse{}), respError(http.StatusNotFound)},
	},
	{
		method: http.MethodDelete, path: "/api/games/{id}",
		summary:     "End game",
		description: "Tears the game down without declaring a winner.",
		req:         gamePath{},
		resp:        []response{respNoContent(), respError(http.StatusNotFound)},
	},
	{
		method: http.MethodPost, path: "/api/games/{id}/reveal",
		summary:     "Reveal",
		description: "Shows the options or hint of the current question. Repeating it changes nothing.",
		req:         gamePath{},
		resp:        []response{respOK(GameResponse{}), respError(http.StatusConflict), respError(http.StatusNotFound)},
	},
	{
		method: http.MethodPost, path: "/api/games/{id}/answer",
		summary:     "Credit a team",
		description: "Awards 10 points to a team and starts its celebration.",
		req: struct {
			gamePath
			AnswerRequest
		}{},
		resp: []response{
			respOK(GameResponse{}),
			respError(http.StatusBadRequest),
			respError(http.StatusConflict),
			respError(http.StatusUnprocessableEntity),
			respError(http.StatusNotFound),
		},
	},
	{
		method: http.MethodPost, path: "/api/games/{id}/check",
		summary:     "Check option",
		description: "Reports whether an option of a multiple-choice question is correct. Scores do not change.",
		req: struct {
			gamePath
			CheckRequest
		}{},
		resp: []response{
			respOK(CheckResponse{}),
			respError(http.StatusBadRequest),
			respError(http.StatusConflict),
			respError(http.StatusUnprocessableEntity),
		},
	},
	{
		method: http.MethodPost, path: "/api/games/{id}/advance",
		summary:     "Next question",
		description: "Moves on once the score summary is showing, or completes the game after the last question.",
		req:         gamePath{},
		resp:        []response{respOK(GameResponse{}), respError(http.StatusConflict)},
	},
	{
		method: http.MethodPost, path: "/api/games/{id}/skip",
		summary:     "Skip question",
		description: "Moves on without awarding points, cutting a celebration short.",
		req:         gamePath{},
		resp:        []response{respOK(GameResponse{}), respError(http.StatusConflict)},
	},
	{
		method: http.MethodGet, path: "/api/games/{id}/winner",
		summary:     "Winner",
		description: "Resolves the winner of a completed game and discards the game.",
		req:         gamePath{},
		resp:        []response{respOK(game.Result{}), respError(http.StatusConflict), respError(http.StatusNotFound)},
	},
	{
		method: http.MethodPost, path: "/api/winner",
		summary:     "Resolve winner",
		description: "Resolves the winner from raw teams and scores. The first team with the top score wins.",
		req:         WinnerRequest{},
		resp:        []response{respOK(game.Result{}), respError(http.StatusBadRequest)},
	},
	{
		method: http.MethodGet, path: "/api/games/{id}/events",
		summary:     "SSE event stream",
		description: "Server-Sent Events: a snapshot first, then one event per transition.",
		req:         gamePath{},
		resp:        []response{respStream("text/event-stream")},
	},
	{
		method: http.MethodGet, path: "/api/games/{id}/ws",
		summary:     "WebSocket event stream",
		description: "Upgrades to a WebSocket carrying the same events as the SSE stream.",
		req:         gamePath{},
		resp:        []response{respSwitching()},
	},
	{
		method: http.MethodGet, path: "/api/games/{id}/qr.png",
		summary:     "Play QR code",
		description: "PNG QR code linking to the game's play screen.",
		req:         gamePath{},
		resp:        []response{respStream("image/png")},
	},
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Bollywood Quiz API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Game session API for the Bollywood party trivia game.")

	for _, op := range operations {
		oc, err := r.NewOperationContext(op.method, op.path)
		if err != nil {
			continue
		}
		oc.SetSummary(op.summary)
		oc.SetDescription(op.description)
		if op.req != nil {
			oc.AddReqStructure(op.req)
		}
		for _, resp := range op.resp {
			opts := []openapi.ContentOption{openapi.WithHTTPStatus(resp.status)}
			if resp.contentType != "" {
				opts = append(opts, openapi.WithContentType(resp.contentType))
			}
			oc.AddRespStructure(resp.body, opts...)
		}
		_ = r.AddOperation(oc)
	}

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
