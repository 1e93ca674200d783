package handlers

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
	"unsafe"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setNext assigns the event's next handler. hook.Event only exposes an
// unexported setter, so reach the promoted field through unsafe reflection.
func setNext(e *core.RequestEvent, f func() error) {
	fv := reflect.ValueOf(e).Elem().
		FieldByName("Event"). // router.Event
		FieldByName("Event"). // hook.Event
		FieldByName("next")
	reflect.NewAt(fv.Type(), unsafe.Pointer(fv.UnsafeAddr())).Elem().
		Set(reflect.ValueOf(f))
}

func newMiddlewareEvent(rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.Request = httptest.NewRequest(http.MethodPost, "/api/customers", nil)
	e.Response = rec
	return e
}

func TestRequestTimeout_FastHandlerPassesThrough(t *testing.T) {
	rec := httptest.NewRecorder()
	e := newMiddlewareEvent(rec)
	setNext(e, func() error {
		return e.JSON(http.StatusCreated, map[string]string{"message": "created"})
	})

	err := RequestTimeout(time.Second)(e)

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "created")
}

func TestRequestTimeout_HandlerErrorPropagates(t *testing.T) {
	rec := httptest.NewRecorder()
	e := newMiddlewareEvent(rec)
	setNext(e, func() error {
		return apis.NewNotFoundError("Customer not found", nil)
	})

	err := RequestTimeout(time.Second)(e)

	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apis.ToApiError(err).Status)
}

func TestRequestTimeout_LateHandlerWritesDiscarded(t *testing.T) {
	rec := httptest.NewRecorder()
	e := newMiddlewareEvent(rec)

	handlerDone := make(chan struct{})
	setNext(e, func() error {
		time.Sleep(150 * time.Millisecond)
		err := e.JSON(http.StatusCreated, map[string]string{"message": "late"})
		close(handlerDone)
		return err
	})

	err := RequestTimeout(20 * time.Millisecond)(e)

	require.NoError(t, err)
	assert.Equal(t, http.StatusRequestTimeout, rec.Code)
	assert.Contains(t, rec.Body.String(), "Request timeout")

	timedOutBody := rec.Body.String()

	select {
	case <-handlerDone:
	case <-time.After(time.Second):
		t.Fatal("handler never finished")
	}

	// The handler's own response went nowhere.
	assert.Equal(t, http.StatusRequestTimeout, rec.Code)
	assert.Equal(t, timedOutBody, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "late")
}

func TestRequestTimeout_CommittedResponseStands(t *testing.T) {
	rec := httptest.NewRecorder()
	e := newMiddlewareEvent(rec)

	handlerDone := make(chan struct{})
	setNext(e, func() error {
		if err := e.JSON(http.StatusOK, map[string]string{"message": "already sent"}); err != nil {
			return err
		}
		time.Sleep(150 * time.Millisecond)
		e.Response.Write([]byte("trailing"))
		close(handlerDone)
		return nil
	})

	err := RequestTimeout(20 * time.Millisecond)(e)
	require.NoError(t, err)

	select {
	case <-handlerDone:
	case <-time.After(time.Second):
		t.Fatal("handler never finished")
	}

	// No 408 on top of the committed response, no trailing bytes either.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "already sent")
	assert.NotContains(t, rec.Body.String(), "Request timeout")
	assert.NotContains(t, rec.Body.String(), "trailing")
}

func TestStatusRecorder_CapturesFirstStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rec}

	sr.WriteHeader(http.StatusCreated)
	sr.WriteHeader(http.StatusTeapot)

	assert.Equal(t, http.StatusCreated, sr.status)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestStatusRecorder_ImplicitOKOnWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rec}

	sr.Write([]byte("body"))

	assert.Equal(t, http.StatusOK, sr.status)
}

func TestObserveRequests_ReturnsHandlerOutcome(t *testing.T) {
	rec := httptest.NewRecorder()
	e := newMiddlewareEvent(rec)
	setNext(e, func() error {
		return e.JSON(http.StatusCreated, map[string]string{"message": "created"})
	})

	err := ObserveRequests()(e)

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestObserveRequests_PropagatesError(t *testing.T) {
	rec := httptest.NewRecorder()
	e := newMiddlewareEvent(rec)
	setNext(e, func() error {
		return apis.NewBadRequestError("Invalid request", nil)
	})

	err := ObserveRequests()(e)

	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apis.ToApiError(err).Status)
}
