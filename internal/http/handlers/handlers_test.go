package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/foodgram/go-recipe-backend/internal/auth"
	"github.com/foodgram/go-recipe-backend/internal/domain"
	"github.com/foodgram/go-recipe-backend/internal/repo"
	"github.com/foodgram/go-recipe-backend/internal/services"
	"github.com/foodgram/go-recipe-backend/internal/storage"
)

// ---------- test DB + API fixture ----------

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique DSN per call to avoid cross-test contamination
	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	db.Exec("PRAGMA foreign_keys=ON;")
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// apiFixture mounts every route on a bare Gin engine with a header-based
// identity shim instead of the real token middleware, so tests can act as any
// user by setting X-User-ID.
type apiFixture struct {
	db     *gorm.DB
	router *gin.Engine

	users    *services.UserService
	catalog  *services.CatalogService
	recipes  *services.RecipeService
	relation *services.RelationService
	subs     *services.SubscriptionService
	shopping *services.ShoppingListService
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newHandlerDB(t)
	images := &storage.LocalStore{Dir: t.TempDir(), BaseURL: "/media"}
	tokens := auth.NewManager("handler-test-secret", "handler-test", time.Hour)

	f := &apiFixture{
		db:       db,
		users:    services.NewUserService(db, tokens),
		catalog:  services.NewCatalogService(db),
		recipes:  services.NewRecipeService(db, images),
		relation: services.NewRelationService(db),
		subs:     services.NewSubscriptionService(db),
		shopping: services.NewShoppingListService(db),
	}

	h := New(f.users, f.catalog, f.recipes, f.relation, f.subs, f.shopping)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if uid := c.GetHeader("X-User-ID"); uid != "" {
			c.Set("userID", uid)
		}
		c.Next()
	})

	r.POST("/users", h.Register)
	r.POST("/auth/token/login", h.Login)
	r.GET("/users", h.ListUsers)
	r.GET("/users/me", h.Me)
	r.PATCH("/users/me", h.UpdateMe)
	r.GET("/users/subscriptions", h.ListSubscriptions)
	r.GET("/users/:id", h.GetUser)
	r.POST("/users/:id/subscribe", h.Subscribe)
	r.DELETE("/users/:id/subscribe", h.Unsubscribe)

	r.GET("/tags", h.ListTags)
	r.GET("/tags/:id", h.GetTag)
	r.GET("/ingredients", h.ListIngredients)
	r.GET("/ingredients/:id", h.GetIngredient)

	r.GET("/recipes", h.ListRecipes)
	r.POST("/recipes", h.CreateRecipe)
	r.GET("/recipes/download_shopping_cart", h.DownloadShoppingCart)
	r.GET("/recipes/:id", h.GetRecipe)
	r.PATCH("/recipes/:id", h.UpdateRecipe)
	r.DELETE("/recipes/:id", h.DeleteRecipe)
	r.POST("/recipes/:id/favorite", h.Favorite)
	r.DELETE("/recipes/:id/favorite", h.Unfavorite)
	r.POST("/recipes/:id/shopping_cart", h.AddToCart)
	r.DELETE("/recipes/:id/shopping_cart", h.RemoveFromCart)

	f.router = r
	return f
}

// do performs a request as the given user ("" for anonymous) with an optional
// JSON body.
func (f *apiFixture) do(t *testing.T, method, path, uid string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, path, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if uid != "" {
		req.Header.Set("X-User-ID", uid)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v (body=%s)", err, w.Body.String())
	}
	return out
}

// newUser registers an account directly through the service and returns it.
func (f *apiFixture) newUser(t *testing.T, username string) services.ProfileView {
	t.Helper()
	view, err := f.users.Register(context.Background(), services.RegisterInput{
		Username:  username,
		Email:     username + "@example.com",
		FirstName: "Test",
		LastName:  "User",
		Password:  "sup3r-secret",
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return view
}

func (f *apiFixture) newTag(t *testing.T, name, slug string) *domain.Tag {
	t.Helper()
	tag, err := repo.CreateTag(context.Background(), f.db, name, "#AABB00", slug)
	if err != nil {
		t.Fatalf("create tag %s: %v", name, err)
	}
	return tag
}

func (f *apiFixture) newIngredient(t *testing.T, name, unit string) *domain.Ingredient {
	t.Helper()
	ing, err := repo.CreateIngredient(context.Background(), f.db, name, unit)
	if err != nil {
		t.Fatalf("create ingredient %s: %v", name, err)
	}
	return ing
}

// testImage returns a valid base64 payload for recipe bodies.
func testImage() string {
	return base64.StdEncoding.EncodeToString([]byte("fake png bytes"))
}

// ---------- helpers-only tests ----------

func Test_clampPagination_Bounds(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=-5&page_size=9999", nil)
	p, ps := clampPagination(c)
	if p != 1 || ps != 100 {
		t.Fatalf("clamp bounds got p=%d ps=%d", p, ps)
	}

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=&page_size=0", nil)
	p, ps = clampPagination(c)
	if p != 1 || ps != 1 {
		t.Fatalf("clamp defaults got p=%d ps=%d", p, ps)
	}

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	p, ps = clampPagination(c)
	if p != 1 || ps != 20 {
		t.Fatalf("defaults got p=%d ps=%d", p, ps)
	}

	// `limit` is the public page-size name and wins over the alias.
	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?limit=5&page_size=50", nil)
	if _, ps = clampPagination(c); ps != 5 {
		t.Fatalf("limit param got ps=%d", ps)
	}
}

func Test_boolFlag_and_recipesLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?a=1&b=true&c=0&d=yes", nil)
	if !boolFlag(c, "a") || !boolFlag(c, "b") {
		t.Fatal("expected a and b truthy")
	}
	if boolFlag(c, "c") || boolFlag(c, "d") || boolFlag(c, "missing") {
		t.Fatal("expected c, d and missing falsy")
	}

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?recipes_limit=7", nil)
	if n, valid := recipesLimit(c); !valid || n != 7 {
		t.Fatalf("recipes_limit=7 got (%d,%v)", n, valid)
	}

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	if n, valid := recipesLimit(c); !valid || n != 0 {
		t.Fatalf("absent recipes_limit got (%d,%v)", n, valid)
	}

	for _, bad := range []string{"abc", "0", "-3"} {
		c, _ = gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/?recipes_limit="+bad, nil)
		if _, valid := recipesLimit(c); valid {
			t.Fatalf("recipes_limit=%s should be invalid", bad)
		}
	}
}

func Test_paginationOf(t *testing.T) {
	p := paginationOf(1, 10, 25)
	if p.TotalPages != 3 || !p.HasNext {
		t.Fatalf("unexpected pagination: %#v", p)
	}
	p = paginationOf(3, 10, 25)
	if p.HasNext {
		t.Fatalf("last page should not have next: %#v", p)
	}
	p = paginationOf(1, 10, 0)
	if p.TotalPages != 0 || p.HasNext {
		t.Fatalf("empty set pagination: %#v", p)
	}
}
