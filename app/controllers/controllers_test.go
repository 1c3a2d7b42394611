package controllers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/dailyfresh/app/bootstrap"
	"github.com/shashiranjanraj/dailyfresh/app/models"
	"github.com/shashiranjanraj/dailyfresh/internal/testdb"
	"github.com/shashiranjanraj/dailyfresh/pkg/auth"
	"github.com/shashiranjanraj/dailyfresh/pkg/queue"
)

type site struct {
	t       *testing.T
	srv     *httptest.Server
	client  *http.Client
	catalog testdb.Catalog
	jobs    *queue.MemoryDriver
	c       *bootstrap.Container
}

func newSite(t *testing.T) *site {
	t.Helper()
	db := testdb.Open(t)
	cat := testdb.SeedCatalog(t, db)

	jobs := queue.NewMemoryDriver()
	c, err := bootstrap.New(db, nil, queue.NewManager(jobs), bootstrap.Options{
		CartStore:     "memory",
		HistoryStore:  "memory",
		HomeTTL:       time.Hour,
		ListPageSize:  2,
		OrderPageSize: 1,
		HistorySize:   5,
		ActivationTTL: time.Hour,
	})
	require.NoError(t, err)
	a, err := c.Application()
	require.NoError(t, err)

	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)

	jar, _ := cookiejar.New(nil)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &site{t: t, srv: srv, client: client, catalog: cat, jobs: jobs, c: c}
}

type reply struct {
	Code int
	Body map[string]any
	Raw  string
	Res  *http.Response
}

func (s *site) do(req *http.Request) reply {
	s.t.Helper()
	res, err := s.client.Do(req)
	require.NoError(s.t, err)
	defer res.Body.Close()
	raw, _ := io.ReadAll(res.Body)

	r := reply{Code: res.StatusCode, Raw: string(raw), Res: res}
	_ = json.Unmarshal(raw, &r.Body)
	return r
}

func (s *site) get(path string) reply {
	s.t.Helper()
	req, _ := http.NewRequest(http.MethodGet, s.srv.URL+path, nil)
	return s.do(req)
}

func (s *site) post(path string, form url.Values) reply {
	s.t.Helper()
	req, _ := http.NewRequest(http.MethodPost, s.srv.URL+path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

func (r reply) data() map[string]any {
	d, _ := r.Body["data"].(map[string]any)
	return d
}

// register signs up and activates an account, returning its id.
func (s *site) register(name, pwd string) uint {
	s.t.Helper()
	r := s.post("/user/register", url.Values{
		"user_name": {name}, "pwd": {pwd}, "email": {name + "@example.com"}, "allow": {"on"},
	})
	require.Equal(s.t, http.StatusCreated, r.Code, r.Raw)
	id := uint(r.data()["id"].(float64))

	raw, err := s.jobs.Pop(context.Background())
	require.NoError(s.t, err)
	var env struct {
		Type    string `json:"type"`
		Payload struct {
			To    string `json:"to"`
			Token string `json:"token"`
		} `json:"payload"`
	}
	require.NoError(s.t, json.Unmarshal(raw, &env))
	assert.Equal(s.t, "*jobs.SendActivationEmail", env.Type)
	assert.Equal(s.t, name+"@example.com", env.Payload.To)

	r = s.get("/user/active/" + env.Payload.Token)
	require.Equal(s.t, http.StatusOK, r.Code, r.Raw)
	return id
}

func (s *site) login(name, pwd string, extra url.Values) reply {
	s.t.Helper()
	form := url.Values{"username": {name}, "pwd": {pwd}}
	for k, v := range extra {
		form[k] = v
	}
	return s.post("/user/login", form)
}

func cartForm(sku uint, count string) url.Values {
	return url.Values{"sku_id": {fmt.Sprint(sku)}, "count": {count}}
}

func TestGoodsPages(t *testing.T) {
	s := newSite(t)

	for _, path := range []string{"/", "/index"} {
		r := s.get(path)
		require.Equal(t, http.StatusOK, r.Code, path)
		assert.Len(t, r.data()["types"], 2)
		assert.EqualValues(t, 0, r.data()["cart_count"])
	}

	r := s.get(fmt.Sprintf("/goods/%d", s.catalog.AppleSmall.ID))
	require.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, "Apple 500g", r.data()["sku"].(map[string]any)["name"])
	assert.Len(t, r.data()["same_spu_skus"], 1)

	assert.Equal(t, http.StatusNotFound, s.get("/goods/apple").Code)
	assert.Equal(t, http.StatusNotFound, s.get("/goods/9999").Code)

	r = s.get(fmt.Sprintf("/list/%d/1?sort=price", s.catalog.Fruit.ID))
	require.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, "price", r.data()["sort"])
	skus := r.data()["skus"].([]any)
	require.Len(t, skus, 2)
	assert.Equal(t, "Pear", skus[0].(map[string]any)["name"])

	r = s.get(fmt.Sprintf("/list/%d/abc?sort=bogus", s.catalog.Fruit.ID))
	require.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, "default", r.data()["sort"])
	assert.EqualValues(t, 1, r.data()["page"].(map[string]any)["number"])

	assert.Equal(t, http.StatusNotFound, s.get("/list/9999/1").Code)
}

func TestLoginRequiredPages(t *testing.T) {
	s := newSite(t)
	for _, path := range []string{"/cart", "/user", "/user/order/1", "/user/address"} {
		r := s.get(path)
		require.Equal(t, http.StatusUnauthorized, r.Code, path)
		assert.Equal(t, "/user/login?next="+path, r.data()["login_url"])
	}
}

func TestCartResultCodes(t *testing.T) {
	s := newSite(t)
	c := s.catalog

	r := s.post("/cart/add", cartForm(c.AppleSmall.ID, "1"))
	assert.Equal(t, http.StatusOK, r.Code)
	assert.EqualValues(t, 0, r.Body["res"])
	assert.NotContains(t, r.Body, "total_count")

	s.register("alice", "secret")
	require.Equal(t, http.StatusOK, s.login("alice", "secret", nil).Code)

	cases := []struct {
		name string
		form url.Values
		res  int
	}{
		{"missing count", url.Values{"sku_id": {fmt.Sprint(c.AppleSmall.ID)}}, 1},
		{"non-integer count", cartForm(c.AppleSmall.ID, "two"), 2},
		{"zero count", cartForm(c.AppleSmall.ID, "0"), 2},
		{"unknown sku", cartForm(9999, "1"), 3},
		{"non-numeric sku", url.Values{"sku_id": {"x"}, "count": {"1"}}, 2},
		{"huge count", cartForm(c.AppleLarge.ID, "9223372036854775807"), 4},
		{"over stock", cartForm(c.AppleLarge.ID, "4"), 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := s.post("/cart/add", tc.form)
			assert.Equal(t, http.StatusOK, r.Code)
			assert.EqualValues(t, tc.res, r.Body["res"], r.Raw)
			assert.NotEmpty(t, r.Body["errmsg"])
		})
	}

	r = s.post("/cart/add", cartForm(c.AppleSmall.ID, "2"))
	assert.EqualValues(t, 5, r.Body["res"])
	assert.EqualValues(t, 1, r.Body["total_count"])
	r = s.post("/cart/add", cartForm(c.Shrimp.ID, "3"))
	assert.EqualValues(t, 2, r.Body["total_count"], "distinct items")

	r = s.post("/cart/update", cartForm(c.AppleSmall.ID, "4"))
	assert.EqualValues(t, 5, r.Body["res"])
	assert.EqualValues(t, 7, r.Body["total_count"], "unit sum")

	r = s.post("/cart/update", cartForm(c.AppleLarge.ID, "9"))
	assert.EqualValues(t, 4, r.Body["res"])

	r = s.post("/cart/delete", url.Values{})
	assert.EqualValues(t, 1, r.Body["res"])
	r = s.post("/cart/delete", url.Values{"sku_id": {"x"}})
	assert.EqualValues(t, 2, r.Body["res"])
	r = s.post("/cart/delete", url.Values{"sku_id": {fmt.Sprint(c.Shrimp.ID)}})
	assert.EqualValues(t, 3, r.Body["res"])
	assert.EqualValues(t, 4, r.Body["total_count"])

	r = s.get("/cart")
	require.Equal(t, http.StatusOK, r.Code)
	assert.EqualValues(t, 4, r.data()["total_count"])
	assert.Equal(t, "42", r.data()["total_price"])
	lines := r.data()["skus"].([]any)
	require.Len(t, lines, 1)
	assert.Equal(t, "42", lines[0].(map[string]any)["amount"])

	r = s.get("/")
	assert.EqualValues(t, 1, r.data()["cart_count"])
}

func TestRegisterValidation(t *testing.T) {
	s := newSite(t)

	r := s.get("/user/register")
	require.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, "/user/register", r.data()["action"])

	r = s.post("/user/register", url.Values{"user_name": {"bob"}, "pwd": {"x"}, "email": {"nope"}})
	require.Equal(t, http.StatusUnprocessableEntity, r.Code)
	errs := r.Body["errors"].(map[string]any)
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "allow")

	r = s.post("/user/register", url.Values{
		"user_name": {"dave"}, "pwd": {strings.Repeat("p", 80)}, "email": {"d@example.com"}, "allow": {"on"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, r.Code, r.Raw)
	assert.Contains(t, r.Body["errors"], "pwd")

	s.register("bob", "pw")
	r = s.post("/user/register", url.Values{
		"user_name": {"bob"}, "pwd": {"pw"}, "email": {"b@example.com"}, "allow": {"on"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, r.Code)
	assert.Equal(t, "Username already exists", r.Body["message"])
}

func TestActivationLinks(t *testing.T) {
	s := newSite(t)

	r := s.post("/user/register", url.Values{
		"user_name": {"carol"}, "pwd": {"pw"}, "email": {"c@example.com"}, "allow": {"on"},
	})
	require.Equal(t, http.StatusCreated, r.Code)
	id := uint(r.data()["id"].(float64))

	assert.Equal(t, http.StatusForbidden, s.login("carol", "pw", nil).Code)

	expired, err := auth.ActivationToken(id, -time.Minute)
	require.NoError(t, err)
	r = s.get("/user/active/" + expired)
	assert.Equal(t, http.StatusGone, r.Code)
	assert.Equal(t, "Activation link expired", r.Body["message"])

	assert.Equal(t, http.StatusBadRequest, s.get("/user/active/garbage").Code)

	valid, err := auth.ActivationToken(id, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, s.get("/user/active/"+valid).Code)
	assert.Equal(t, http.StatusBadRequest, s.get("/user/active/"+valid).Code, "already used")
}

func TestLoginRememberAndLogout(t *testing.T) {
	s := newSite(t)
	s.register("dave", "pw")

	r := s.login("dave", "wrong", nil)
	assert.Equal(t, http.StatusUnauthorized, r.Code)
	r = s.login("nobody", "pw", nil)
	assert.Equal(t, http.StatusUnauthorized, r.Code)

	req, _ := http.NewRequest(http.MethodPost, s.srv.URL+"/user/login?next=//evil.example",
		strings.NewReader(url.Values{"username": {"dave"}, "pwd": {"pw"}, "remember": {"on"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r = s.do(req)
	require.Equal(t, http.StatusOK, r.Code, r.Raw)
	assert.Equal(t, "/", r.data()["next"])
	assert.NotEmpty(t, r.data()["token"])

	var remember *http.Cookie
	for _, ck := range r.Res.Cookies() {
		if ck.Name == "username" {
			remember = ck
		}
	}
	require.NotNil(t, remember)
	assert.NotEqual(t, "dave", remember.Value, "stored encrypted")
	assert.Equal(t, 7*24*3600, remember.MaxAge)

	r = s.get("/user/login")
	assert.Equal(t, "dave", r.data()["username"])
	assert.Equal(t, "checked", r.data()["checked"])

	r = s.get("/user")
	require.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, "dave", r.data()["user"].(map[string]any)["username"])

	require.Equal(t, http.StatusOK, s.get("/user/logout").Code)
	assert.Equal(t, http.StatusUnauthorized, s.get("/user").Code)

	req, _ = http.NewRequest(http.MethodPost, s.srv.URL+"/user/login?next=/user/order/1",
		strings.NewReader(url.Values{"username": {"dave"}, "pwd": {"pw"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r = s.do(req)
	assert.Equal(t, "/user/order/1", r.data()["next"])
	r = s.get("/user/login")
	assert.Equal(t, "", r.data()["username"], "remember cookie cleared")
}

func TestBearerToken(t *testing.T) {
	s := newSite(t)
	s.register("erin", "pw")
	token := s.login("erin", "pw", nil).data()["token"].(string)

	anon := newSiteClient(s)
	req, _ := http.NewRequest(http.MethodGet, s.srv.URL+"/user", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res, err := anon.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func newSiteClient(s *site) *http.Client {
	return &http.Client{Transport: s.srv.Client().Transport}
}

func TestDetailRecordsHistory(t *testing.T) {
	s := newSite(t)
	s.register("fay", "pw")
	s.login("fay", "pw", nil)

	s.get(fmt.Sprintf("/goods/%d", s.catalog.Shrimp.ID))
	s.get(fmt.Sprintf("/goods/%d", s.catalog.Pear.ID))

	r := s.get("/user")
	require.Equal(t, http.StatusOK, r.Code)
	history := r.data()["goods_li"].([]any)
	require.Len(t, history, 2)
	assert.Equal(t, "Pear", history[0].(map[string]any)["name"])
	assert.Nil(t, r.data()["address"])
}

func TestAddresses(t *testing.T) {
	s := newSite(t)
	s.register("gus", "pw")
	s.login("gus", "pw", nil)

	r := s.post("/user/address", url.Values{"receiver": {"Gus"}, "addr": {"1 Road"}, "phone": {"12345"}})
	require.Equal(t, http.StatusUnprocessableEntity, r.Code)
	assert.Contains(t, r.Body["errors"], "phone")

	r = s.post("/user/address", url.Values{
		"receiver": {"Gus"}, "addr": {"1 Road"}, "zip_code": {"100000"}, "phone": {"13812345678"},
	})
	require.Equal(t, http.StatusCreated, r.Code, r.Raw)
	assert.Equal(t, true, r.data()["is_default"])

	r = s.post("/user/address", url.Values{"receiver": {"Gus"}, "addr": {"2 Road"}, "phone": {"13912345678"}})
	require.Equal(t, http.StatusCreated, r.Code)
	assert.Equal(t, false, r.data()["is_default"])

	r = s.get("/user/address")
	require.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, "1 Road", r.data()["address"].(map[string]any)["addr"])
	assert.Len(t, r.data()["addresses"], 2)
}

func TestOrders(t *testing.T) {
	s := newSite(t)
	id := s.register("hal", "pw")
	s.login("hal", "pw", nil)

	apple := s.catalog.AppleSmall
	testdb.SeedOrder(t, s.c.DB, "20240101000001", id, time.Now().Add(-time.Hour), map[*models.GoodsSKU]int{&apple: 2})
	testdb.SeedOrder(t, s.c.DB, "20240101000002", id, time.Now(), map[*models.GoodsSKU]int{&apple: 1})

	r := s.get("/user/order/1")
	require.Equal(t, http.StatusOK, r.Code)
	orders := r.data()["order_page"].([]any)
	require.Len(t, orders, 1)
	o := orders[0].(map[string]any)
	assert.Equal(t, "20240101000002", o["order_id"])
	assert.Equal(t, "unpaid", o["status_name"])
	assert.Equal(t, "Alipay", o["pay_method_name"])
	assert.EqualValues(t, 2, r.data()["page"].(map[string]any)["num_pages"])

	r = s.get("/user/order/99")
	require.Equal(t, http.StatusOK, r.Code)
	assert.EqualValues(t, 1, r.data()["page"].(map[string]any)["number"])
}

func TestHealth(t *testing.T) {
	s := newSite(t)
	r := s.get("/healthz")
	require.Equal(t, http.StatusOK, r.Code)
	assert.Equal(t, "ok", r.data()["database"])
}
