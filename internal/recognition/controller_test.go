package recognition_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/krishivoice/internal/langid"
	"github.com/nadzzz/krishivoice/internal/recognition"
	"github.com/nadzzz/krishivoice/internal/recognition/recognitiontest"
)

const tamilPhrase = "வணக்கம் நண்பரே"

type result struct {
	text     string
	detected langid.Code
}

// recorder captures handler calls in the order they happen.
type recorder struct {
	mu      sync.Mutex
	calls   []string
	results chan result
	errs    chan error
	ends    chan struct{}
}

func newRecorder() *recorder {
	return &recorder{
		results: make(chan result, 4),
		errs:    make(chan error, 4),
		ends:    make(chan struct{}, 4),
	}
}

func (r *recorder) log(call string) {
	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()
}

func (r *recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

func (r *recorder) handlers() recognition.Handlers {
	return recognition.Handlers{
		OnResult: func(text string, detected langid.Code) {
			r.log("result")
			r.results <- result{text, detected}
		},
		OnError: func(err error) {
			r.log("error")
			r.errs <- err
		},
		OnEnd: func() {
			r.log("end")
			r.ends <- struct{}{}
		},
	}
}

func (r *recorder) waitResult(t *testing.T) result {
	t.Helper()
	select {
	case res := <-r.results:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for result")
		return result{}
	}
}

func (r *recorder) waitErr(t *testing.T) error {
	t.Helper()
	select {
	case err := <-r.errs:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for error")
		return nil
	}
}

func (r *recorder) waitEnd(t *testing.T) {
	t.Helper()
	select {
	case <-r.ends:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for end")
	}
}

// quiet asserts that no handler fires for a short while.
func (r *recorder) quiet(t *testing.T) {
	t.Helper()
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, r.Calls())
}

func TestStart_Unavailable(t *testing.T) {
	eng := &recognitiontest.Engine{Unavailable: true}
	rec := newRecorder()

	cancel := recognition.New(eng).Start(context.Background(), langid.Hindi, rec.handlers())
	require.NotNil(t, cancel)
	cancel()

	// Reported synchronously.
	require.Equal(t, []string{"error"}, rec.Calls())
	assert.ErrorIs(t, <-rec.errs, recognition.ErrUnavailable)
}

func TestStart_ConcreteLanguage(t *testing.T) {
	eng := &recognitiontest.Engine{}
	rec := newRecorder()

	recognition.New(eng).Start(context.Background(), langid.Tamil, rec.handlers())
	primary := eng.WaitStream(t, 0)

	assert.Equal(t, recognition.Options{
		Language:        "ta-IN",
		Interim:         true,
		MaxAlternatives: 3,
	}, primary.Opts)

	primary.Emit(recognitiontest.Interim("vanakkam"))
	primary.Emit(recognitiontest.Final("vanakkam nanba", 0.2))
	primary.Emit(recognition.EndEvent())

	res := rec.waitResult(t)
	assert.Equal(t, "vanakkam nanba", res.text)
	assert.Empty(t, res.detected)
	rec.waitEnd(t)
	assert.Len(t, eng.Streams(), 1, "no second pass for a concrete language")
}

func TestStart_AutoUsesEnglishWithFiveAlternatives(t *testing.T) {
	eng := &recognitiontest.Engine{}
	recognition.New(eng).Start(context.Background(), langid.Auto, recognition.Handlers{})

	primary := eng.WaitStream(t, 0)
	assert.Equal(t, "en-IN", primary.Opts.Language)
	assert.Equal(t, 5, primary.Opts.MaxAlternatives)
	assert.True(t, primary.Opts.Interim)
	assert.False(t, primary.Opts.Continuous)
}

func TestStart_EmptyRequestIsAuto(t *testing.T) {
	eng := &recognitiontest.Engine{}
	rec := newRecorder()

	recognition.New(eng).Start(context.Background(), "", rec.handlers())
	primary := eng.WaitStream(t, 0)
	assert.Equal(t, 5, primary.Opts.MaxAlternatives)

	primary.Emit(recognitiontest.Final("what is the weather today", 0.9))
	res := rec.waitResult(t)
	assert.Equal(t, langid.English, res.detected)
}

func TestStart_FinalizesOnce(t *testing.T) {
	eng := &recognitiontest.Engine{}
	rec := newRecorder()

	recognition.New(eng).Start(context.Background(), langid.Hindi, rec.handlers())
	primary := eng.WaitStream(t, 0)

	primary.Emit(recognitiontest.Final("namaste", 0.9))
	primary.Emit(recognitiontest.Final(" kisan", 0.9))
	primary.Emit(recognition.ErrorEvent(recognition.CauseNetwork))
	primary.Emit(recognition.EndEvent())

	rec.waitEnd(t)
	assert.Equal(t, []string{"result", "end"}, rec.Calls())
	assert.Equal(t, "namaste", (<-rec.results).text)
}

func TestStart_FinalWithBlankTextKeepsListening(t *testing.T) {
	eng := &recognitiontest.Engine{}
	rec := newRecorder()

	recognition.New(eng).Start(context.Background(), langid.English, rec.handlers())
	primary := eng.WaitStream(t, 0)

	primary.Emit(recognitiontest.Final("   ", 0.9))
	primary.Emit(recognitiontest.Final("check soil", 0.9))

	assert.Equal(t, "check soil", rec.waitResult(t).text)
}

func TestStart_AutoConfidentSkipsSecondPass(t *testing.T) {
	eng := &recognitiontest.Engine{}
	rec := newRecorder()

	recognition.New(eng).Start(context.Background(), langid.Auto, rec.handlers())
	primary := eng.WaitStream(t, 0)
	primary.Emit(recognitiontest.Final(tamilPhrase, 0.7))

	res := rec.waitResult(t)
	assert.Equal(t, tamilPhrase, res.text)
	assert.Equal(t, langid.Tamil, res.detected)
	assert.Len(t, eng.Streams(), 1)
}

func TestStart_AutoEnglishSkipsSecondPass(t *testing.T) {
	eng := &recognitiontest.Engine{}
	rec := newRecorder()

	recognition.New(eng).Start(context.Background(), langid.Auto, rec.handlers())
	primary := eng.WaitStream(t, 0)
	primary.Emit(recognitiontest.Final("how is my crop", 0.2))

	res := rec.waitResult(t)
	assert.Equal(t, langid.English, res.detected)
	assert.Len(t, eng.Streams(), 1)
}

func TestStart_MissingConfidenceCountsAsHalf(t *testing.T) {
	eng := &recognitiontest.Engine{}
	rec := newRecorder()

	// 0.5 is below the 0.7 threshold, so a second pass starts.
	recognition.New(eng).Start(context.Background(), langid.Auto, rec.handlers())
	primary := eng.WaitStream(t, 0)
	primary.Emit(recognitiontest.Final(tamilPhrase, 0))

	child := eng.WaitStream(t, 1)
	// 0.55 beats the substituted 0.5.
	child.Emit(recognitiontest.Final("வணக்கம் நண்பா", 0.55))

	res := rec.waitResult(t)
	assert.Equal(t, "வணக்கம் நண்பா", res.text)
}

func TestStart_SecondPass(t *testing.T) {
	tests := []struct {
		name  string
		child func(s *recognitiontest.Stream)
		want  string
	}{
		{
			name:  "higher confidence supersedes",
			child: func(s *recognitiontest.Stream) { s.Emit(recognitiontest.Final("வணக்கம் நண்பா", 0.6)) },
			want:  "வணக்கம் நண்பா",
		},
		{
			name:  "equal confidence keeps original",
			child: func(s *recognitiontest.Stream) { s.Emit(recognitiontest.Final("வணக்கம் நண்பா", 0.4)) },
			want:  tamilPhrase,
		},
		{
			name:  "empty text keeps original",
			child: func(s *recognitiontest.Stream) { s.Emit(recognitiontest.Final("  ", 0.95)) },
			want:  tamilPhrase,
		},
		{
			name:  "error keeps original",
			child: func(s *recognitiontest.Stream) { s.Emit(recognition.ErrorEvent(recognition.CauseNoSpeech)) },
			want:  tamilPhrase,
		},
		{
			name:  "end without result keeps original",
			child: func(s *recognitiontest.Stream) { s.Emit(recognition.EndEvent()) },
			want:  tamilPhrase,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := &recognitiontest.Engine{}
			rec := newRecorder()

			recognition.New(eng).Start(context.Background(), langid.Auto, rec.handlers())
			primary := eng.WaitStream(t, 0)
			primary.Emit(recognitiontest.Final(tamilPhrase, 0.4))

			child := eng.WaitStream(t, 1)
			assert.Equal(t, recognition.Options{Language: "ta-IN", MaxAlternatives: 1}, child.Opts)

			tt.child(child)

			res := rec.waitResult(t)
			assert.Equal(t, tt.want, res.text)
			assert.Equal(t, langid.Tamil, res.detected)
			assert.Len(t, eng.Streams(), 2, "at most one second pass")
		})
	}
}

func TestStart_SecondPassTimeout(t *testing.T) {
	eng := &recognitiontest.Engine{}
	rec := newRecorder()

	ctrl := recognition.New(eng, recognition.WithFallbackTimeout(50*time.Millisecond))
	ctrl.Start(context.Background(), langid.Auto, rec.handlers())
	primary := eng.WaitStream(t, 0)
	primary.Emit(recognitiontest.Final(tamilPhrase, 0.3))

	child := eng.WaitStream(t, 1)

	res := rec.waitResult(t)
	assert.Equal(t, tamilPhrase, res.text)
	assert.Equal(t, langid.Tamil, res.detected)
	assert.True(t, child.Stopped(), "timed out pass is stopped")

	// A late child result is ignored.
	child.Emit(recognitiontest.Final("வணக்கம் நண்பா", 0.99))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, []string{"result"}, rec.Calls())
}

func TestStart_SecondPassUnavailableKeepsOriginal(t *testing.T) {
	eng := &recognitiontest.Engine{}
	rec := newRecorder()

	recognition.New(eng).Start(context.Background(), langid.Auto, rec.handlers())
	primary := eng.WaitStream(t, 0)
	eng.Unavailable = true
	primary.Emit(recognitiontest.Final(tamilPhrase, 0.3))

	res := rec.waitResult(t)
	assert.Equal(t, tamilPhrase, res.text)
	assert.Equal(t, langid.Tamil, res.detected)
}

func TestStart_EndHeldUntilSecondPassDelivers(t *testing.T) {
	eng := &recognitiontest.Engine{}
	rec := newRecorder()

	recognition.New(eng).Start(context.Background(), langid.Auto, rec.handlers())
	primary := eng.WaitStream(t, 0)
	primary.Emit(recognitiontest.Final(tamilPhrase, 0.3))
	child := eng.WaitStream(t, 1)
	primary.Emit(recognition.EndEvent())

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, rec.Calls(), "end must not precede the result")

	child.Emit(recognitiontest.Final("வணக்கம் நண்பா", 0.8))
	rec.waitEnd(t)
	assert.Equal(t, []string{"result", "end"}, rec.Calls())
}

func TestStart_PrimaryErrors(t *testing.T) {
	tests := []struct {
		cause recognition.Cause
		want  string
	}{
		{recognition.CauseNoSpeech, "No speech detected. Please speak clearly and try again."},
		{recognition.CauseAudioCapture, "No microphone detected. Please check your microphone connection."},
		{recognition.CauseNotAllowed, "Microphone access denied. Please allow microphone permissions and try again."},
		{recognition.CauseNetwork, "Network error. Please check your internet connection."},
		{recognition.CauseServiceNotAllowed, "Speech recognition service not available. Please try again later."},
		{"bad-grammar", "Speech recognition error: bad-grammar. Please try again."},
	}

	for _, tt := range tests {
		t.Run(string(tt.cause), func(t *testing.T) {
			eng := &recognitiontest.Engine{}
			rec := newRecorder()

			recognition.New(eng).Start(context.Background(), langid.Auto, rec.handlers())
			primary := eng.WaitStream(t, 0)
			primary.Emit(recognition.ErrorEvent(tt.cause))
			primary.Emit(recognition.EndEvent())

			err := rec.waitErr(t)
			assert.EqualError(t, err, tt.want)
			cause, ok := recognition.CauseOf(err)
			require.True(t, ok)
			assert.Equal(t, tt.cause, cause)

			rec.waitEnd(t)
			assert.Equal(t, []string{"error", "end"}, rec.Calls())
		})
	}
}

func TestStart_StartFailure(t *testing.T) {
	eng := &recognitiontest.Engine{StartErr: errors.New("mic busy")}
	rec := newRecorder()

	recognition.New(eng).Start(context.Background(), langid.Hindi, rec.handlers())

	err := rec.waitErr(t)
	assert.ErrorIs(t, err, recognition.ErrStartFailed)
	assert.Contains(t, err.Error(), "mic busy")

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, []string{"error"}, rec.Calls())
}

func TestStart_EndWithoutResult(t *testing.T) {
	eng := &recognitiontest.Engine{}
	rec := newRecorder()

	recognition.New(eng).Start(context.Background(), langid.Auto, rec.handlers())
	primary := eng.WaitStream(t, 0)
	primary.Emit(recognitiontest.Interim("hel"))
	primary.Emit(recognition.EndEvent())

	rec.waitEnd(t)
	assert.Equal(t, []string{"end"}, rec.Calls())
}

func TestStart_CancelDuringSecondPass(t *testing.T) {
	eng := &recognitiontest.Engine{}
	rec := newRecorder()

	cancel := recognition.New(eng).Start(context.Background(), langid.Auto, rec.handlers())
	primary := eng.WaitStream(t, 0)
	primary.Emit(recognitiontest.Final(tamilPhrase, 0.3))
	child := eng.WaitStream(t, 1)

	cancel()
	cancel() // idempotent

	require.Eventually(t, func() bool {
		return primary.Aborted() && child.Aborted()
	}, time.Second, 5*time.Millisecond)

	child.Emit(recognitiontest.Final("வணக்கம் நண்பா", 0.9))
	primary.Emit(recognition.EndEvent())
	rec.quiet(t)
}

func TestStart_CancelWhileSecondPassStarting(t *testing.T) {
	eng := &recognitiontest.Engine{
		OnStart: func(s *recognitiontest.Stream) {
			if s.Opts.MaxAlternatives == 1 {
				time.Sleep(100 * time.Millisecond)
			}
		},
	}
	rec := newRecorder()

	cancel := recognition.New(eng).Start(context.Background(), langid.Auto, rec.handlers())
	primary := eng.WaitStream(t, 0)
	primary.Emit(recognitiontest.Final(tamilPhrase, 0.3))

	require.Eventually(t, func() bool { return len(eng.Streams()) == 2 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	cancel()

	child := eng.Streams()[1]
	require.Eventually(t, child.Aborted, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"start", "stop", "abort"}, child.Calls())
	assert.Equal(t, []string{"start", "stop", "abort"}, primary.Calls())
	rec.quiet(t)
}

func TestStart_EventsDuringStartAreKept(t *testing.T) {
	eng := &recognitiontest.Engine{
		OnStart: func(s *recognitiontest.Stream) {
			s.Emit(recognitiontest.Final("namaste", 0.9))
		},
	}
	rec := newRecorder()

	recognition.New(eng).Start(context.Background(), langid.Hindi, rec.handlers())

	res := rec.waitResult(t)
	assert.Equal(t, "namaste", res.text)
	assert.Empty(t, res.detected)
}

func TestNew_DefaultFallbackTimeout(t *testing.T) {
	assert.Equal(t, 3*time.Second, recognition.DefaultFallbackTimeout)
	assert.Equal(t, recognition.DefaultFallbackTimeout, recognition.New(&recognitiontest.Engine{}).FallbackTimeout())
	assert.Equal(t, 50*time.Millisecond,
		recognition.New(&recognitiontest.Engine{}, recognition.WithFallbackTimeout(50*time.Millisecond)).FallbackTimeout())
}

func TestStart_ContextCancel(t *testing.T) {
	eng := &recognitiontest.Engine{}
	rec := newRecorder()

	ctx, cancel := context.WithCancel(context.Background())
	recognition.New(eng).Start(ctx, langid.Hindi, rec.handlers())
	primary := eng.WaitStream(t, 0)

	cancel()
	require.Eventually(t, primary.Aborted, time.Second, 5*time.Millisecond)
	assert.True(t, primary.Stopped())

	primary.Emit(recognitiontest.Final("namaste", 0.9))
	rec.quiet(t)
}

func TestWithConfidenceThreshold(t *testing.T) {
	eng := &recognitiontest.Engine{}
	rec := newRecorder()

	ctrl := recognition.New(eng, recognition.WithConfidenceThreshold(0.3))
	ctrl.Start(context.Background(), langid.Auto, rec.handlers())
	primary := eng.WaitStream(t, 0)
	primary.Emit(recognitiontest.Final(tamilPhrase, 0.35))

	assert.Equal(t, langid.Tamil, rec.waitResult(t).detected)
	assert.Len(t, eng.Streams(), 1)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", recognition.StateIdle.String())
	assert.Equal(t, "listening", recognition.StateListening.String())
	assert.Equal(t, "awaiting_fallback", recognition.StateAwaitingFallback.String())
	assert.Equal(t, "finalized", recognition.StateFinalized.String())
}
