package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/foodgram/go-recipe-backend/internal/services"
)

// recipeAPI seeds a ready-to-cook fixture: one author, one tag, two
// ingredients, and a helper that builds a valid creation payload.
type recipeAPI struct {
	*apiFixture
	author services.ProfileView
	other  services.ProfileView
	tagID  string
	flour  string
	milk   string
}

func newRecipeAPI(t *testing.T) *recipeAPI {
	t.Helper()
	f := newAPI(t)
	return &recipeAPI{
		apiFixture: f,
		author:     f.newUser(t, "author"),
		other:      f.newUser(t, "other"),
		tagID:      f.newTag(t, "Breakfast", "breakfast").ID,
		flour:      f.newIngredient(t, "flour", "g").ID,
		milk:       f.newIngredient(t, "milk", "ml").ID,
	}
}

func (f *recipeAPI) validInput() services.RecipeInput {
	return services.RecipeInput{
		Name:        "Pancakes",
		Text:        "Mix and fry.",
		Image:       testImage(),
		CookingTime: 20,
		TagIDs:      []string{f.tagID},
		Ingredients: []services.RecipeLineInput{
			{IngredientID: f.flour, Amount: 200},
			{IngredientID: f.milk, Amount: 300},
		},
	}
}

// createRecipe posts a valid payload and returns the created view.
func (f *recipeAPI) createRecipe(t *testing.T, in services.RecipeInput) services.RecipeView {
	t.Helper()
	w := f.do(t, http.MethodPost, "/recipes", f.author.ID, in)
	if w.Code != http.StatusCreated {
		t.Fatalf("create recipe -> %d body=%s", w.Code, w.Body.String())
	}
	return decodeJSON[services.RecipeView](t, w)
}

func TestCreateRecipe_BadJSON_Validation_Success(t *testing.T) {
	f := newRecipeAPI(t)

	if w := f.do(t, http.MethodPost, "/recipes", f.author.ID, "{bad"); w.Code != http.StatusBadRequest {
		t.Fatalf("bad json -> %d", w.Code)
	}

	// Out-of-range amount -> 400 with field details
	in := f.validInput()
	in.Ingredients[0].Amount = 0
	w := f.do(t, http.MethodPost, "/recipes", f.author.ID, in)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad amount -> %d body=%s", w.Code, w.Body.String())
	}
	if resp := decodeJSON[ErrorResponse](t, w); len(resp.Fields) == 0 {
		t.Fatalf("expected field errors, got %#v", resp)
	}

	view := f.createRecipe(t, f.validInput())
	if view.Name != "Pancakes" || view.Author.ID != f.author.ID {
		t.Fatalf("unexpected view: %#v", view)
	}
	if len(view.Tags) != 1 || len(view.Ingredients) != 2 {
		t.Fatalf("tags/ingredients not attached: %#v", view)
	}
	if view.Image == "" || strings.Contains(view.Image, "base64") {
		t.Fatalf("image should be a stored reference, got %q", view.Image)
	}
}

func TestGetRecipe_ViewerFlags_And_NotFound(t *testing.T) {
	f := newRecipeAPI(t)
	view := f.createRecipe(t, f.validInput())

	if w := f.do(t, http.MethodGet, "/recipes/missing", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing recipe -> %d", w.Code)
	}

	// Anonymous: flags false
	w := f.do(t, http.MethodGet, "/recipes/"+view.ID, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get -> %d", w.Code)
	}
	if got := decodeJSON[services.RecipeView](t, w); got.IsFavorited || got.IsInShoppingCart {
		t.Fatalf("anonymous flags must be false: %#v", got)
	}

	// Favorite as the other user, then the flag flips for them only.
	if w := f.do(t, http.MethodPost, "/recipes/"+view.ID+"/favorite", f.other.ID, nil); w.Code != http.StatusCreated {
		t.Fatalf("favorite -> %d", w.Code)
	}
	w = f.do(t, http.MethodGet, "/recipes/"+view.ID, f.other.ID, nil)
	if got := decodeJSON[services.RecipeView](t, w); !got.IsFavorited {
		t.Fatalf("favoriting viewer should see the flag: %#v", got)
	}
	w = f.do(t, http.MethodGet, "/recipes/"+view.ID, f.author.ID, nil)
	if got := decodeJSON[services.RecipeView](t, w); got.IsFavorited {
		t.Fatalf("author did not favorite: %#v", got)
	}
}

func TestUpdateRecipe_AuthorOnly_And_Partial(t *testing.T) {
	f := newRecipeAPI(t)
	view := f.createRecipe(t, f.validInput())

	newName := "Crepes"
	up := services.RecipeUpdate{Name: &newName}

	// Non-author -> 403
	if w := f.do(t, http.MethodPatch, "/recipes/"+view.ID, f.other.ID, up); w.Code != http.StatusForbidden {
		t.Fatalf("non-author patch -> %d", w.Code)
	}

	// Author -> 200, other fields untouched
	w := f.do(t, http.MethodPatch, "/recipes/"+view.ID, f.author.ID, up)
	if w.Code != http.StatusOK {
		t.Fatalf("patch -> %d body=%s", w.Code, w.Body.String())
	}
	got := decodeJSON[services.RecipeView](t, w)
	if got.Name != "Crepes" || got.Text != view.Text || len(got.Ingredients) != 2 {
		t.Fatalf("partial update went wrong: %#v", got)
	}

	// Replacing ingredients is destructive
	up = services.RecipeUpdate{
		Ingredients: []services.RecipeLineInput{{IngredientID: f.milk, Amount: 500}},
	}
	w = f.do(t, http.MethodPatch, "/recipes/"+view.ID, f.author.ID, up)
	if w.Code != http.StatusOK {
		t.Fatalf("replace lines -> %d body=%s", w.Code, w.Body.String())
	}
	got = decodeJSON[services.RecipeView](t, w)
	if len(got.Ingredients) != 1 || got.Ingredients[0].Amount != 500 {
		t.Fatalf("line replace went wrong: %#v", got.Ingredients)
	}
}

func TestDeleteRecipe_AuthorOnly(t *testing.T) {
	f := newRecipeAPI(t)
	view := f.createRecipe(t, f.validInput())

	if w := f.do(t, http.MethodDelete, "/recipes/"+view.ID, f.other.ID, nil); w.Code != http.StatusForbidden {
		t.Fatalf("non-author delete -> %d", w.Code)
	}
	if w := f.do(t, http.MethodDelete, "/recipes/"+view.ID, f.author.ID, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete -> %d", w.Code)
	}
	if w := f.do(t, http.MethodGet, "/recipes/"+view.ID, "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("get after delete -> %d", w.Code)
	}
}

func TestListRecipes_Filters_Pagination_ETag(t *testing.T) {
	f := newRecipeAPI(t)

	dinnerTag := f.newTag(t, "Dinner", "dinner")
	first := f.createRecipe(t, f.validInput())

	in := f.validInput()
	in.Name = "Soup"
	in.TagIDs = []string{dinnerTag.ID}
	second := f.createRecipe(t, in)

	// Newest first
	w := f.do(t, http.MethodGet, "/recipes", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list -> %d", w.Code)
	}
	out := decodeJSON[ListRecipesResponse](t, w)
	if out.Pagination.Total != 2 || len(out.Recipes) != 2 {
		t.Fatalf("expected both recipes: %#v", out.Pagination)
	}
	if out.Recipes[0].ID != second.ID {
		t.Fatalf("expected newest first, got %s", out.Recipes[0].ID)
	}

	// Tag filter
	w = f.do(t, http.MethodGet, "/recipes?tags=dinner", "", nil)
	out = decodeJSON[ListRecipesResponse](t, w)
	if len(out.Recipes) != 1 || out.Recipes[0].ID != second.ID {
		t.Fatalf("tag filter mismatch: %#v", out.Recipes)
	}

	// Favorited filter for a signed-in viewer
	if w := f.do(t, http.MethodPost, "/recipes/"+first.ID+"/favorite", f.other.ID, nil); w.Code != http.StatusCreated {
		t.Fatalf("favorite -> %d", w.Code)
	}
	w = f.do(t, http.MethodGet, "/recipes?is_favorited=1", f.other.ID, nil)
	out = decodeJSON[ListRecipesResponse](t, w)
	if len(out.Recipes) != 1 || out.Recipes[0].ID != first.ID {
		t.Fatalf("favorited filter mismatch: %#v", out.Recipes)
	}

	// Anonymous viewer: the same filter is dropped, both recipes visible
	w = f.do(t, http.MethodGet, "/recipes?is_favorited=1", "", nil)
	out = decodeJSON[ListRecipesResponse](t, w)
	if len(out.Recipes) != 2 {
		t.Fatalf("anonymous favorited filter should be ignored: %d", len(out.Recipes))
	}

	// ETag round trip -> 304
	w = f.do(t, http.MethodGet, "/recipes", "", nil)
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header")
	}
	req := httptest.NewRequest(http.MethodGet, "/recipes", nil)
	req.Header.Set("If-None-Match", etag)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotModified {
		t.Fatalf("conditional get -> %d", rec.Code)
	}
}

func TestFavorite_And_Cart_Lifecycle(t *testing.T) {
	f := newRecipeAPI(t)
	view := f.createRecipe(t, f.validInput())
	uid := f.other.ID

	for _, res := range []string{"favorite", "shopping_cart"} {
		path := "/recipes/" + view.ID + "/" + res

		w := f.do(t, http.MethodPost, path, uid, nil)
		if w.Code != http.StatusCreated {
			t.Fatalf("%s add -> %d body=%s", res, w.Code, w.Body.String())
		}
		if got := decodeJSON[services.RecipeSummary](t, w); got.ID != view.ID || got.Name != view.Name {
			t.Fatalf("%s summary mismatch: %#v", res, got)
		}

		if w := f.do(t, http.MethodPost, path, uid, nil); w.Code != http.StatusConflict {
			t.Fatalf("%s re-add -> %d", res, w.Code)
		}
		if w := f.do(t, http.MethodDelete, path, uid, nil); w.Code != http.StatusNoContent {
			t.Fatalf("%s remove -> %d", res, w.Code)
		}
		if w := f.do(t, http.MethodDelete, path, uid, nil); w.Code != http.StatusNotFound {
			t.Fatalf("%s re-remove -> %d", res, w.Code)
		}

		// Unknown recipe -> 404
		if w := f.do(t, http.MethodPost, "/recipes/missing/"+res, uid, nil); w.Code != http.StatusNotFound {
			t.Fatalf("%s missing recipe -> %d", res, w.Code)
		}
	}
}

func TestDownloadShoppingCart_ConsolidatesAmounts(t *testing.T) {
	f := newRecipeAPI(t)

	first := f.createRecipe(t, f.validInput())
	in := f.validInput()
	in.Name = "Porridge"
	in.Ingredients = []services.RecipeLineInput{{IngredientID: f.flour, Amount: 50}}
	second := f.createRecipe(t, in)

	uid := f.other.ID
	for _, id := range []string{first.ID, second.ID} {
		if w := f.do(t, http.MethodPost, "/recipes/"+id+"/shopping_cart", uid, nil); w.Code != http.StatusCreated {
			t.Fatalf("cart add -> %d", w.Code)
		}
	}

	w := f.do(t, http.MethodGet, "/recipes/download_shopping_cart", uid, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("download -> %d body=%s", w.Code, w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "shopping_list.txt") {
		t.Fatalf("unexpected Content-Disposition: %q", cd)
	}
	body := w.Body.String()
	if !strings.HasPrefix(body, "Shopping list:\n") {
		t.Fatalf("missing header line: %q", body)
	}
	if !strings.Contains(body, " - flour: 250 g.\n") {
		t.Fatalf("flour amounts not consolidated: %q", body)
	}
	if !strings.Contains(body, " - milk: 300 ml.\n") {
		t.Fatalf("milk line missing: %q", body)
	}
}
