package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nadzzz/krishivoice/internal/assistant"
	"github.com/nadzzz/krishivoice/internal/langid"
	"github.com/nadzzz/krishivoice/internal/message"
	"github.com/nadzzz/krishivoice/internal/metrics"
	"github.com/nadzzz/krishivoice/internal/recognition"
)

// QueryRequest is the body of POST /api/ai/query.
type QueryRequest struct {
	Query    string `json:"query" example:"How do I improve clay soil?"`
	Language string `json:"language,omitempty" example:"hi-IN"`
	Source   string `json:"source,omitempty"`
}

// handleQuery processes a POST /api/ai/query request.
//
// @Summary     Ask the agricultural assistant
// @Description Answers a farmer's question in the requested language. With language "auto" (or none)
// @Description the reply language is detected from the query text. When no language model is configured,
// @Description or it fails, a canned reply is returned and mode says so.
// @Tags        assistant
// @Accept      json
// @Produce     json
// @Param       query  body      QueryRequest   true  "Question and reply language"
// @Success     200    {object}  message.Reply  "Assistant reply"
// @Failure     400    {object}  ErrorResponse  "Missing query or unsupported language"
// @Failure     500    {object}  ErrorResponse  "Internal processing error"
// @Router      /api/ai/query [post]
func (t *Transport) handleQuery(w http.ResponseWriter, r *http.Request, handler assistant.Handler) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	source := req.Source
	if source == "" {
		source = "http"
	}

	reply, err := handler(r.Context(), message.NewQuery(source, req.Query, req.Language))
	switch {
	case errors.Is(err, assistant.ErrEmptyQuery):
		writeError(w, http.StatusBadRequest, "Query is required")
		return
	case errors.Is(err, langid.ErrUnknownLanguage):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		slog.Error("query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// DetectRequest is the body of POST /api/detect.
type DetectRequest struct {
	Text string `json:"text" example:"मिट्टी की जांच कैसे करें"`
}

// DetectResponse is the classifier's verdict.
type DetectResponse struct {
	Language langid.Code    `json:"language" example:"hi-IN"`
	Label    string         `json:"label" example:"हिंदी (Hindi)"`
	Scores   []langid.Score `json:"scores"`
}

// handleDetect processes a POST /api/detect request.
//
// @Summary     Detect the language of a text
// @Description Classifies text into one of the supported languages using keyword and script signals.
// @Description Scores are ranked best first.
// @Tags        language
// @Accept      json
// @Produce     json
// @Param       text  body      DetectRequest   true  "Text to classify"
// @Success     200   {object}  DetectResponse  "Detected language"
// @Failure     400   {object}  ErrorResponse   "Invalid request body"
// @Router      /api/detect [post]
func (t *Transport) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req DetectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	res := t.deps.Classifier.Classify(req.Text)
	metrics.Detections.WithLabelValues(string(res.Language), "api").Inc()
	writeJSON(w, http.StatusOK, DetectResponse{
		Language: res.Language,
		Label:    res.Language.Label(),
		Scores:   res.Scores,
	})
}

// Language is one entry of the language picker.
type Language struct {
	Code  langid.Code `json:"code" example:"ta-IN"`
	Label string      `json:"label" example:"தமிழ் (Tamil)"`
	Name  string      `json:"name,omitempty" example:"Tamil"`
}

// Languages returns the picker entries, Auto first.
func Languages() []Language {
	out := []Language{{Code: langid.Auto, Label: langid.Auto.Label()}}
	for _, c := range langid.Concrete() {
		out = append(out, Language{Code: c, Label: c.Label(), Name: c.Name()})
	}
	return out
}

// handleLanguages processes a GET /api/languages request.
//
// @Summary     List supported languages
// @Tags        language
// @Produce     json
// @Success     200  {array}  Language
// @Router      /api/languages [get]
func (t *Transport) handleLanguages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Languages())
}

// handleHealth processes a GET /api/health request.
//
// @Summary     API liveness
// @Tags        health
// @Produce     json
// @Success     200  {object}  map[string]string
// @Router      /api/health [get]
func (t *Transport) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK", "message": "KrishiVoice API server is running"})
}

// RecognizeResponse is the outcome of recognising an uploaded clip.
type RecognizeResponse struct {
	Text             string         `json:"text"`
	Language         string         `json:"language" example:"ta-IN"`
	DetectedLanguage string         `json:"detected_language,omitempty" example:"ta-IN"`
	Reply            *message.Reply `json:"reply,omitempty"`
}

type recognizeOutcome struct {
	text     string
	detected langid.Code
	err      error
	ended    bool
}

// handleRecognize processes a POST /api/recognize request.
//
// @Summary     Recognise speech in an uploaded clip
// @Description Runs a recognition session over the clip. With lang "auto" the transcript's language is
// @Description detected and, when the first pass was not confident, the clip is transcribed again in the
// @Description detected language. With answer=true the transcript is also sent to the assistant.
// @Tags        recognition
// @Accept      multipart/form-data
// @Produce     json
// @Param       audio   formData  file    true   "Recorded audio (wav, webm, ogg, mp3)"
// @Param       lang    formData  string  false  "Language code or auto"  default(auto)
// @Param       answer  query     bool    false  "Also answer the transcript"
// @Success     200  {object}  RecognizeResponse  "Transcript"
// @Failure     400  {object}  ErrorResponse      "Missing audio or unsupported language"
// @Failure     422  {object}  ErrorResponse      "No speech detected"
// @Failure     502  {object}  ErrorResponse      "Transcription server unreachable"
// @Failure     503  {object}  ErrorResponse      "Recognition not configured"
// @Router      /api/recognize [post]
func (t *Transport) handleRecognize(w http.ResponseWriter, r *http.Request, handler assistant.Handler) {
	if t.deps.Whisper == nil {
		writeError(w, http.StatusServiceUnavailable, recognition.ErrUnavailable.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, t.cfg.MaxUploadBytes)
	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "audio file is required: "+err.Error())
		return
	}
	defer file.Close()
	audio, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading audio: "+err.Error())
		return
	}

	requested := langid.Auto
	if lang := strings.TrimSpace(r.FormValue("lang")); lang != "" {
		if requested, err = langid.Parse(lang); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	ctx := r.Context()
	clip := t.deps.Whisper.Clip(ctx, audio, header.Header.Get("Content-Type"), requested)
	done := make(chan recognizeOutcome, 3)
	cancel := recognition.New(clip, t.deps.Recognition...).Start(ctx, requested, recognition.Handlers{
		OnResult: func(text string, detected langid.Code) { done <- recognizeOutcome{text: text, detected: detected} },
		OnError:  func(err error) { done <- recognizeOutcome{err: err} },
		OnEnd:    func() { done <- recognizeOutcome{ended: true} },
	})
	defer cancel()

	var out recognizeOutcome
	select {
	case out = <-done:
	case <-ctx.Done():
		return
	}

	switch {
	case out.ended:
		writeError(w, http.StatusUnprocessableEntity, (&recognition.Error{Cause: recognition.CauseNoSpeech}).Error())
		return
	case out.err != nil:
		writeError(w, recognizeStatus(out.err), out.err.Error())
		return
	}

	resp := RecognizeResponse{Text: out.text, Language: string(requested)}
	if out.detected != "" {
		resp.Language = string(out.detected)
		resp.DetectedLanguage = string(out.detected)
	}

	if r.URL.Query().Get("answer") == "true" {
		reply, err := handler(ctx, message.NewQuery("http", resp.Text, resp.Language))
		if err != nil {
			slog.Error("answering recognised clip failed", "error", err)
			writeError(w, http.StatusInternalServerError, "query failed")
			return
		}
		resp.Reply = reply
	}
	writeJSON(w, http.StatusOK, resp)
}

func recognizeStatus(err error) int {
	if errors.Is(err, recognition.ErrUnavailable) {
		return http.StatusServiceUnavailable
	}
	cause, _ := recognition.CauseOf(err)
	switch cause {
	case recognition.CauseNoSpeech:
		return http.StatusUnprocessableEntity
	case recognition.CauseNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
