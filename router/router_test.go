package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/r56149203/EduSphere/api"
	"github.com/r56149203/EduSphere/config"
	"github.com/r56149203/EduSphere/database/dbtest"
	"github.com/r56149203/EduSphere/model"
	"github.com/r56149203/EduSphere/router"
	"github.com/r56149203/EduSphere/services"
	"github.com/r56149203/EduSphere/services/storage"
	"github.com/r56149203/EduSphere/utils"
	"github.com/r56149203/EduSphere/utils/auth"
	"github.com/r56149203/EduSphere/utils/cache"
	"github.com/r56149203/EduSphere/utils/middleware"
	"github.com/r56149203/EduSphere/utils/pdfvalidation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const password = "Secret123"

type testEnv struct {
	t     *testing.T
	app   *fiber.App
	db    *gorm.DB
	files *storage.LocalStore
	audit *middleware.AuditLogger

	admin, student model.User
	class9         model.Class
	maths          model.Subject
	algebra        model.Chapter
	class10        model.Class
}

func newTestEnv(t *testing.T, redisCache *cache.RedisCache) *testEnv {
	t.Helper()
	store := dbtest.New(t)
	files, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	env := &config.EnviornmentVariable{
		BASE_URL:            "http://localhost:8080",
		JWT_SECRET:          "test-secret",
		JWT_ISSUER:          "edusphere",
		SESSION_TTL_HOURS:   24,
		MAX_UPLOAD_MB:       10,
		PAGE_SIZE:           10,
		RATE_LIMIT_REQUESTS: 10000,
	}
	server := api.NewAPIServer(":0", 10<<20)
	audit := router.SetupRoutes(server.GetEngine(), store, router.Dependencies{
		Env:      env,
		Files:    files,
		Cache:    redisCache,
		Activity: utils.NewActivityLoggerWriter(io.Discard),
		Quiet:    true,
	})
	t.Cleanup(audit.Wait)

	e := &testEnv{t: t, app: server.GetEngine(), db: store.GetDB(), files: files, audit: audit}
	e.admin = e.createUser("admin@example.com", model.RoleAdmin)
	e.student = e.createUser("student@example.com", model.RoleStudent)

	e.class9 = model.Class{Name: "Class 9", Subjects: []model.Subject{
		{Name: "Mathematics", Chapters: []model.Chapter{{Name: "Algebra"}, {Name: "Geometry"}}},
		{Name: "Science"},
	}}
	e.class10 = model.Class{Name: "Class 10"}
	require.NoError(t, e.db.Create(&e.class9).Error)
	require.NoError(t, e.db.Create(&e.class10).Error)
	e.maths = e.class9.Subjects[0]
	e.algebra = e.maths.Chapters[0]
	return e
}

func (e *testEnv) createUser(email, role string) model.User {
	e.t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(e.t, err)
	user := model.User{FullName: "User " + role, Email: email, PasswordHash: hash, Role: role}
	require.NoError(e.t, e.db.Create(&user).Error)
	return user
}

func (e *testEnv) createLink(title string) model.Resource {
	e.t.Helper()
	r := model.Resource{
		Type:      model.ResourceTypeLink,
		Title:     title,
		ClassID:   e.class9.ID,
		SubjectID: e.maths.ID,
		ChapterID: e.algebra.ID,
	}
	require.NoError(e.t, r.SetContent(model.URLContent{URL: "https://example.com/" + url.PathEscape(title)}))
	require.NoError(e.t, e.db.Create(&r).Error)
	return r
}

func (e *testEnv) hierarchyForm() url.Values {
	return url.Values{
		"class_id":   {id(e.class9.ID)},
		"subject_id": {id(e.maths.ID)},
		"chapter_id": {id(e.algebra.ID)},
	}
}

// client is a browser: it keeps cookies between requests
type client struct {
	t   *testing.T
	app *fiber.App
	jar map[string]*http.Cookie
}

func (e *testEnv) client() *client {
	return &client{t: e.t, app: e.app, jar: map[string]*http.Cookie{}}
}

func (e *testEnv) loggedIn(email string) *client {
	c := e.client()
	resp := c.login(email, password)
	require.Equal(e.t, fiber.StatusFound, resp.StatusCode)
	return c
}

func (c *client) do(req *http.Request) *http.Response {
	c.t.Helper()
	for _, ck := range c.jar {
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}
	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	for _, ck := range resp.Cookies() {
		if ck.Value == "" || ck.MaxAge < 0 || (!ck.Expires.IsZero() && ck.Expires.Before(time.Now())) {
			delete(c.jar, ck.Name)
			continue
		}
		c.jar[ck.Name] = ck
	}
	return resp
}

func (c *client) get(path string) *http.Response {
	c.t.Helper()
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

// csrf returns the token the csrf middleware issued to this client
func (c *client) csrf() string {
	c.t.Helper()
	if _, ok := c.jar["csrf_"]; !ok {
		c.get("/ping")
	}
	ck, ok := c.jar["csrf_"]
	require.True(c.t, ok, "no csrf cookie issued")
	return ck.Value
}

func (c *client) postForm(path string, form url.Values) *http.Response {
	c.t.Helper()
	form.Set(middleware.CSRFField, c.csrf())
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	return c.do(req)
}

func (c *client) postMultipart(path string, form url.Values, fileName string, content []byte) *http.Response {
	c.t.Helper()
	form.Set(middleware.CSRFField, c.csrf())

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, vs := range form {
		for _, v := range vs {
			require.NoError(c.t, w.WriteField(k, v))
		}
	}
	if fileName != "" {
		part, err := w.CreateFormFile("pdf_file", fileName)
		require.NoError(c.t, err)
		_, err = part.Write(content)
		require.NoError(c.t, err)
	}
	require.NoError(c.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return c.do(req)
}

func (c *client) login(email, pass string) *http.Response {
	c.t.Helper()
	return c.postForm("/login", url.Values{"email": {email}, "password": {pass}})
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func id(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func assertRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, location, resp.Header.Get(fiber.HeaderLocation))
}

func TestBrowsePages(t *testing.T) {
	e := newTestEnv(t, nil)
	e.createLink("Linear Equations")
	c := e.client()

	resp := c.get("/")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	page := body(t, resp)
	assert.Contains(t, page, "Class 9")
	assert.Contains(t, page, "Class 10")

	resp = c.get("/class?class_id=" + id(e.class9.ID))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	page = body(t, resp)
	assert.Contains(t, page, "Mathematics")
	assert.Contains(t, page, "Science")

	resp = c.get("/subject?class_id=" + id(e.class9.ID) + "&subject_id=" + id(e.maths.ID))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Geometry")

	resp = c.get("/chapter?class_id=" + id(e.class9.ID) + "&subject_id=" + id(e.maths.ID) + "&chapter_id=" + id(e.algebra.ID))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	page = body(t, resp)
	assert.Contains(t, page, "Linear Equations")
	assert.Contains(t, page, "Links")
	assert.Contains(t, page, "Visit Link")
}

func TestBrowseUnknownOrInconsistentIDs(t *testing.T) {
	e := newTestEnv(t, nil)
	c := e.client()

	for _, path := range []string{
		"/class?class_id=999",
		"/class?class_id=abc",
		"/subject?class_id=" + id(e.class10.ID) + "&subject_id=" + id(e.maths.ID),
		"/chapter?class_id=" + id(e.class10.ID) + "&subject_id=" + id(e.maths.ID) + "&chapter_id=" + id(e.algebra.ID),
		"/chapter",
	} {
		assertRedirect(t, c.get(path), "/error?code=404")
	}
}

func TestErrorPage(t *testing.T) {
	e := newTestEnv(t, nil)
	c := e.client()

	resp := c.get("/error?code=404")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Page Not Found")

	resp = c.get("/error?code=403")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = c.get("/error?code=418")
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body(t, resp), "A system error occurred. Please try again.")

	resp = c.get("/no-such-page")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Page Not Found")
}

func TestPostWithoutCSRFTokenIsRejected(t *testing.T) {
	e := newTestEnv(t, nil)
	c := e.client()

	form := url.Values{"email": {e.student.Email}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	resp := c.do(req)

	assertRedirect(t, resp, "/error?code=403")
	assert.NotContains(t, c.jar, middleware.SessionCookie)
}

func TestLoginAndLogout(t *testing.T) {
	e := newTestEnv(t, nil)
	c := e.client()

	resp := c.login(e.student.Email, "wrong-password")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Invalid email or password.")

	resp = c.login("", "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Please enter both email and password.")

	resp = c.login(strings.ToUpper(e.student.Email), password)
	assertRedirect(t, resp, "/")
	require.Contains(t, c.jar, middleware.SessionCookie)

	assertRedirect(t, c.get("/login"), "/")

	resp = c.get("/profile")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), e.student.Email)

	assertRedirect(t, c.get("/logout"), "/login")
	assertRedirect(t, c.get("/profile"), "/login")

	var revoked int64
	require.NoError(t, e.db.Model(&model.JWTTokenBlacklist{}).Where("user_id = ?", e.student.ID).Count(&revoked).Error)
	assert.Equal(t, int64(1), revoked)
}

func TestAdminLandsOnDashboard(t *testing.T) {
	e := newTestEnv(t, nil)
	c := e.client()
	assertRedirect(t, c.login(e.admin.Email, password), "/admin/dashboard")

	resp := c.get("/admin/dashboard")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Admin Dashboard")
}

func TestLoginLockout(t *testing.T) {
	mr := miniredis.RunT(t)
	redisCache, err := cache.NewRedisCache("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { redisCache.Close() })

	e := newTestEnv(t, redisCache)
	c := e.client()

	for i := 0; i < 5; i++ {
		assert.Equal(t, fiber.StatusUnauthorized, c.login(e.student.Email, "nope").StatusCode)
	}

	resp := c.login(e.student.Email, password)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderRetryAfter))
	assert.Contains(t, body(t, resp), "Too many failed attempts. Try again in")
	assert.NotContains(t, c.jar, middleware.SessionCookie)
}

func TestRegister(t *testing.T) {
	e := newTestEnv(t, nil)
	c := e.client()

	form := url.Values{
		"full_name":        {"New Student"},
		"email":            {"New@Example.com"},
		"password":         {password},
		"confirm_password": {password},
	}
	assertRedirect(t, c.postForm("/register", form), "/login")

	var user model.User
	require.NoError(t, e.db.Where("email = ?", "new@example.com").First(&user).Error)
	assert.Equal(t, model.RoleStudent, user.Role)

	resp := c.get("/login")
	assert.Contains(t, body(t, resp), "Registration successful!")

	form.Set("email", "new@example.com")
	resp = c.postForm("/register", form)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	page := body(t, resp)
	assert.Contains(t, page, "Email address is already registered.")
	assert.Contains(t, page, `value="New Student"`)
	assert.NotContains(t, page, password)
}

func TestProfileUpdateAndPasswordChange(t *testing.T) {
	e := newTestEnv(t, nil)
	c := e.loggedIn(e.student.Email)
	oldSession := *c.jar[middleware.SessionCookie]

	resp := c.postForm("/profile", url.Values{"action": {"update_profile"}, "full_name": {"Renamed"}, "email": {e.admin.Email}})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Email address is already registered.")

	assertRedirect(t, c.postForm("/profile", url.Values{"action": {"update_profile"}, "full_name": {"Renamed"}, "email": {e.student.Email}}), "/profile")
	assert.Contains(t, body(t, c.get("/profile")), "Profile updated successfully!")

	resp = c.postForm("/profile", url.Values{
		"action":           {"change_password"},
		"current_password": {"wrong"},
		"new_password":     {"Changed456"},
		"confirm_password": {"Changed456"},
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Current password is incorrect.")

	assertRedirect(t, c.postForm("/profile", url.Values{
		"action":           {"change_password"},
		"current_password": {password},
		"new_password":     {"Changed456"},
		"confirm_password": {"Changed456"},
	}), "/profile")

	// The caller keeps a fresh session, the old token is dead
	assert.Equal(t, fiber.StatusOK, c.get("/profile").StatusCode)
	stale := e.client()
	stale.jar[middleware.SessionCookie] = &oldSession
	assertRedirect(t, stale.get("/profile"), "/login")
}

func TestRoleGates(t *testing.T) {
	e := newTestEnv(t, nil)

	assertRedirect(t, e.client().get("/admin/dashboard"), "/login")
	assertRedirect(t, e.client().get("/profile"), "/login")
	assertRedirect(t, e.loggedIn(e.student.Email).get("/admin/content"), "/error?code=403")
	assert.Equal(t, fiber.StatusOK, e.loggedIn(e.admin.Email).get("/admin/content").StatusCode)
}

func TestAjaxSelectors(t *testing.T) {
	e := newTestEnv(t, nil)

	resp := e.client().get("/ajax/subjects?class_id=" + id(e.class9.ID))
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	c := e.loggedIn(e.student.Email)
	var options []map[string]interface{}

	resp = c.get("/ajax/subjects?class_id=" + id(e.class9.ID))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&options))
	require.Len(t, options, 2)
	assert.Equal(t, "Mathematics", options[0]["name"])
	assert.Equal(t, float64(e.maths.ID), options[0]["id"])

	resp = c.get("/ajax/chapters?subject_id=" + id(e.maths.ID))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&options))
	require.Len(t, options, 2)
	assert.Equal(t, "Algebra", options[0]["name"])

	resp = c.get("/ajax/chapters?subject_id=999")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, body(t, resp))

	resp = c.get("/ajax/subjects")
	assert.JSONEq(t, `[]`, body(t, resp))
}

func TestAdminAddResource(t *testing.T) {
	e := newTestEnv(t, nil)
	c := e.loggedIn(e.admin.Email)

	resp := c.get("/admin/resource/add")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Add New Resource")

	form := e.hierarchyForm()
	form.Set("type", "video")
	form.Set("title", "Intro video")
	resp = c.postForm("/admin/resource/add", form)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	page := body(t, resp)
	assert.Contains(t, page, "URL is required for this resource type.")
	assert.Contains(t, page, `value="Intro video"`)

	form.Set("content_url", "https://www.youtube.com/embed/abc")
	form.Set("add_another", "1")
	resp = c.postForm("/admin/resource/add", form)
	assertRedirect(t, resp, "/admin/resource/add?class_id="+id(e.class9.ID)+"&subject_id="+id(e.maths.ID)+"&chapter_id="+id(e.algebra.ID)+"&type=video")

	var created model.Resource
	require.NoError(t, e.db.Where("title = ?", "Intro video").First(&created).Error)
	assert.Equal(t, model.ResourceTypeVideo, created.Type)
	require.NotNil(t, created.UploadedBy)
	assert.Equal(t, e.admin.ID, *created.UploadedBy)

	resp = c.get(resp.Header.Get(fiber.HeaderLocation))
	page = body(t, resp)
	assert.Contains(t, page, "Resource added successfully!")
	assert.Contains(t, page, "Algebra")
	assert.Contains(t, page, `id="add_another" name="add_another" value="1" checked`)

	e.audit.Wait()
	var entries int64
	require.NoError(t, e.db.Model(&model.AdminAuditLog{}).Where("action = ?", "resource_create").Count(&entries).Error)
	assert.Equal(t, int64(2), entries)
}

func TestAdminPDFLifecycle(t *testing.T) {
	e := newTestEnv(t, nil)
	c := e.loggedIn(e.admin.Email)

	form := e.hierarchyForm()
	form.Set("type", "pdf")
	form.Set("title", "Worksheet")

	resp := c.postMultipart("/admin/resource/add", form, "fake.pdf", []byte("not really a pdf"))
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Uploaded file is not a valid PDF.")
	stored, err := e.files.List()
	require.NoError(t, err)
	assert.Empty(t, stored)

	assertRedirect(t, c.postMultipart("/admin/resource/add", form, "worksheet.pdf", pdfvalidation.MinimalPDF(1)), "/admin/resource/add")

	var res model.Resource
	require.NoError(t, e.db.Where("title = ?", "Worksheet").First(&res).Error)
	rel, ok := res.StoredFile()
	require.True(t, ok)
	name, ok := services.StoredName(rel)
	require.True(t, ok)
	assert.True(t, e.files.Exists(name))

	resp = c.get("/pdf-viewer?file=" + url.QueryEscape(rel))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "/uploads/pdfs/"+name)

	resp = c.get("/uploads/pdfs/" + name)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "application/pdf")

	for _, file := range []string{"pdfs/../" + name, "../" + name, "pdfs/missing.pdf", "/etc/passwd", ""} {
		assertRedirect(t, c.get("/pdf-viewer?file="+url.QueryEscape(file)), "/error?code=404")
	}

	// Editing without a new file keeps the PDF
	edit := "/admin/resource/edit?id=" + id(res.ID)
	resp = c.get(edit)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Current file: "+name)

	form.Set("title", "Worksheet v2")
	assertRedirect(t, c.postMultipart(edit, form, "", nil), "/admin/content")
	assert.True(t, e.files.Exists(name))

	// Switching to a link removes the file once the row is saved
	form.Set("type", "link")
	form.Set("content_url", "https://example.com/worksheet")
	assertRedirect(t, c.postMultipart(edit, form, "", nil), "/admin/content")
	assert.False(t, e.files.Exists(name))

	require.NoError(t, e.db.First(&res, res.ID).Error)
	assert.Equal(t, model.ResourceTypeLink, res.Type)
	assert.Nil(t, res.FilePath)

	assertRedirect(t, c.get("/admin/resource/delete?id="+id(res.ID)), "/admin/content")
	assert.Contains(t, body(t, c.get("/admin/content")), "Resource deleted successfully!")
	assert.ErrorIs(t, e.db.First(&model.Resource{}, res.ID).Error, gorm.ErrRecordNotFound)

	// A second delete is a silent no-op
	assertRedirect(t, c.get("/admin/resource/delete?id="+id(res.ID)), "/admin/content")
	assert.NotContains(t, body(t, c.get("/admin/content")), "successfully")
}

func TestAdminEditUnknownResource(t *testing.T) {
	e := newTestEnv(t, nil)
	c := e.loggedIn(e.admin.Email)
	assertRedirect(t, c.get("/admin/resource/edit?id=999"), "/error?code=404")
}

func TestAdminContentPagination(t *testing.T) {
	e := newTestEnv(t, nil)
	for i := 0; i < 12; i++ {
		e.createLink("Resource " + strconv.Itoa(i))
	}
	c := e.loggedIn(e.admin.Email)

	page := body(t, c.get("/admin/content"))
	assert.Contains(t, page, "Showing page 1 of 2 (12 resources)")
	assert.Equal(t, 10, strings.Count(page, "/admin/resource/edit?id="))

	page = body(t, c.get("/admin/content?page=2"))
	assert.Contains(t, page, "Showing page 2 of 2 (12 resources)")
	assert.Equal(t, 2, strings.Count(page, "/admin/resource/edit?id="))
}

func TestAdminUsers(t *testing.T) {
	e := newTestEnv(t, nil)
	teacher := e.createUser("teacher@example.com", model.RoleTeacher)
	c := e.loggedIn(e.admin.Email)

	page := body(t, c.get("/admin/users"))
	assert.Contains(t, page, e.student.Email)
	assert.Contains(t, page, teacher.Email)

	assertRedirect(t, c.postForm("/admin/users", url.Values{"action": {"update_role"}, "user_id": {id(e.student.ID)}, "role": {"teacher"}}), "/admin/users")
	assert.Contains(t, body(t, c.get("/admin/users")), "User role updated successfully!")
	var student model.User
	require.NoError(t, e.db.First(&student, e.student.ID).Error)
	assert.Equal(t, model.RoleTeacher, student.Role)

	c.postForm("/admin/users", url.Values{"action": {"update_role"}, "user_id": {id(e.student.ID)}, "role": {"owner"}})
	assert.Contains(t, body(t, c.get("/admin/users")), "Invalid role selected.")

	c.postForm("/admin/users", url.Values{"action": {"update_role"}, "user_id": {id(e.admin.ID)}, "role": {"student"}})
	assert.Contains(t, body(t, c.get("/admin/users")), "You cannot change your own role.")

	c.postForm("/admin/users", url.Values{"action": {"delete"}, "user_id": {id(e.admin.ID)}})
	assert.Contains(t, body(t, c.get("/admin/users")), "You cannot delete your own account.")
	require.NoError(t, e.db.First(&model.User{}, e.admin.ID).Error)

	c.postForm("/admin/users", url.Values{"action": {"delete"}, "user_id": {id(e.student.ID)}})
	assert.Contains(t, body(t, c.get("/admin/users")), "User deleted successfully!")
	assert.ErrorIs(t, e.db.First(&model.User{}, e.student.ID).Error, gorm.ErrRecordNotFound)

	assertRedirect(t, c.get("/admin/users?delete="+id(teacher.ID)), "/admin/users")
	assert.ErrorIs(t, e.db.First(&model.User{}, teacher.ID).Error, gorm.ErrRecordNotFound)

	e.audit.Wait()
	var deletes int64
	require.NoError(t, e.db.Model(&model.AdminAuditLog{}).Where("action = ?", "user_delete").Count(&deletes).Error)
	assert.Equal(t, int64(1), deletes)
}

func TestAdminDashboardAndAudit(t *testing.T) {
	e := newTestEnv(t, nil)
	e.createLink("Dashboard link")
	c := e.loggedIn(e.admin.Email)

	page := body(t, c.get("/admin/dashboard"))
	assert.Contains(t, page, "Dashboard link")
	assert.Contains(t, page, e.student.Email)

	c.get("/admin/resource/delete?id=999")
	e.audit.Wait()

	resp := c.get("/admin/audit")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	page = body(t, resp)
	assert.Contains(t, page, "resource_delete")
	assert.Contains(t, page, e.admin.Email)
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t, nil)
	resp := e.client().get("/health")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","database":"up"}`, body(t, resp))
}
