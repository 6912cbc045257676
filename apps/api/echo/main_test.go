package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/Treasure123-school/THS/core"
	"github.com/Treasure123-school/THS/core/announcement"
	"github.com/Treasure123-school/THS/core/auth"
	"github.com/Treasure123-school/THS/core/contact"
	"github.com/Treasure123-school/THS/core/gallery"
	"github.com/Treasure123-school/THS/core/session"
	"github.com/Treasure123-school/THS/core/user"
	emailsvc "github.com/Treasure123-school/THS/services/email"
	feedsvc "github.com/Treasure123-school/THS/services/feed"
	inmemdb "github.com/Treasure123-school/THS/storage/inmem"
)

type testLogger struct {
	mu     sync.Mutex
	errors []string
}

func (l *testLogger) Debug(string, ...interface{}) {}
func (l *testLogger) Info(string, ...interface{})  {}
func (l *testLogger) Warn(string, ...interface{})  {}
func (l *testLogger) Fatal(string, ...interface{}) {}
func (l *testLogger) Error(msg string, _ ...interface{}) {
	l.mu.Lock()
	l.errors = append(l.errors, msg)
	l.mu.Unlock()
}

// syncPublisher delivers events to their handlers before Publish returns.
type syncPublisher struct {
	handlers map[string][]func([]byte) error
}

func (p *syncPublisher) subscribe(topic string, h func([]byte) error) {
	p.handlers[topic] = append(p.handlers[topic], h)
}

func (p *syncPublisher) Publish(_ context.Context, topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	for _, h := range p.handlers[topic] {
		if err = h(data); err != nil {
			return err
		}
	}
	return nil
}

type testEnv struct {
	app      *Server
	conf     *core.Config
	logger   *testLogger
	events   *syncPublisher
	sessions *session.Service
	hub      *feedsvc.Hub

	usrRepo     user.Repository
	annRepo     announcement.Repository
	galleryRepo gallery.Repository
}

func setup(t *testing.T) *testEnv {
	conf := core.NewTestConfig()
	logger := new(testLogger)

	// validation
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	user.LoadCommonPasswords(logger)
	if err := core.ParseEmailTemplates(); err != nil {
		t.Fatalf("ParseEmailTemplates(): %v", err)
	}

	// set up DB & repos
	db := inmemdb.Open()
	env := &testEnv{
		conf:        conf,
		logger:      logger,
		events:      &syncPublisher{handlers: make(map[string][]func([]byte) error)},
		usrRepo:     inmemdb.NewUserRepository(db),
		annRepo:     inmemdb.NewAnnouncementRepository(db),
		galleryRepo: inmemdb.NewGalleryRepository(db),
	}

	// set up services
	emailsvc.ResetSentMessages()
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	usrSvc := user.NewServiceMock(env.usrRepo, mailSvc, conf)
	env.sessions = session.NewService(inmemdb.NewSessionRepository(db), conf.Session.Lifetime)
	contactSvc := contact.NewService(inmemdb.NewContactRepository(db), env.events, mailSvc, conf, logger)
	env.events.subscribe(core.TopicContactSubmitted, contactSvc.HandleSubmitted)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := feedsvc.NewHub(logger)
	go hub.Run(ctx)
	env.hub = hub
	for _, topic := range []string{core.TopicAnnouncementCreated, core.TopicAnnouncementUpdated, core.TopicAnnouncementDeleted} {
		env.events.subscribe(topic, hub.HandleEvent)
	}

	// set up server
	env.app = NewServer(ServerDeps{
		Conf:            conf,
		Logger:          logger,
		AuthSvc:         auth.NewService(usrSvc, env.sessions),
		UserSvc:         usrSvc,
		AnnouncementSvc: announcement.NewService(env.annRepo, env.events, logger),
		GallerySvc:      gallery.NewService(env.galleryRepo),
		ContactSvc:      contactSvc,
		FeedHub:         hub,
		Validate:        validate,
		Translator:      translator,
	})
	return env
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	cookie   *http.Cookie
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path string, cookie *http.Cookie, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, nil, data...)
}

func sessionCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func httpErr(code, msg string, fields ...map[string]string) ErrorResponse {
	resp := ErrorResponse{Error: code, Message: msg}
	if len(fields) > 0 {
		resp.Fields = fields[0]
	}
	return resp
}

var (
	errUnauthenticated = httpErr(codeUnauthenticated, "Authentication required")
	errAdminOnly       = func(role user.Role) ErrorResponse {
		return httpErr(codeForbidden, "Access denied. Required roles: admin. Your role: "+string(role))
	}
	errStaffOnly = func(role user.Role) ErrorResponse {
		return httpErr(codeForbidden, "Access denied. Required roles: admin, teacher. Your role: "+string(role))
	}
)

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHttpTests(t *testing.T, app http.Handler, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.cookie, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
