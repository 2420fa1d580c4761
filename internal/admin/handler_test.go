package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/models"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/repo"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/secrets"
)

// fakeStore: админ 1 ведёт фермера 7, у которого ферма 3 с секцией 5.
type fakeStore struct {
	created      models.Farmer
	farmerUpdate repo.FarmerUpdate
	farmUpdate   repo.FarmUpdate
}

func linked(adminID, farmerID int64) bool { return adminID == 1 && farmerID == 7 }

func (s *fakeStore) Dashboard(_ context.Context, adminID int64) (*repo.AdminDashboard, error) {
	if adminID != 1 {
		return nil, repo.ErrNotFound
	}
	return &repo.AdminDashboard{Admin: repo.AdminInfo{AdminID: 1, AdminFname: "Asha"},
		Farmers: []repo.FarmerRow{{FarmerID: 7, TotalFarms: 1}}}, nil
}

func (s *fakeStore) CreateFarmer(_ context.Context, f models.Farmer) (*models.Farmer, error) {
	if f.AdminID != 1 {
		return nil, repo.ErrNotFound
	}
	s.created = f
	f.FarmerID = 8
	return &f, nil
}

func (s *fakeStore) UpdateFarmer(_ context.Context, adminID, farmerID int64, u repo.FarmerUpdate) error {
	if !linked(adminID, farmerID) {
		return repo.ErrNotFound
	}
	s.farmerUpdate = u
	return nil
}

func (s *fakeStore) Farms(_ context.Context, adminID, farmerID int64) ([]models.Farm, error) {
	if !linked(adminID, farmerID) {
		return nil, repo.ErrNotFound
	}
	return []models.Farm{{FarmID: 3, FarmerID: 7, FarmKey: "abc"}}, nil
}

func (s *fakeStore) UpdateFarm(_ context.Context, adminID, farmerID, farmID int64, u repo.FarmUpdate) error {
	if !linked(adminID, farmerID) || farmID != 3 {
		return repo.ErrNotFound
	}
	s.farmUpdate = u
	return nil
}

func (s *fakeStore) Sections(_ context.Context, adminID, farmerID, farmID int64) ([]repo.SectionRow, error) {
	if !linked(adminID, farmerID) || farmID != 3 {
		return nil, repo.ErrNotFound
	}
	return []repo.SectionRow{{SectionID: 5, FarmID: 3}}, nil
}

func (s *fakeStore) SectionDevices(_ context.Context, adminID, farmerID, farmID, sectionID int64) ([]repo.SectionDeviceRow, error) {
	if !linked(adminID, farmerID) || farmID != 3 || sectionID != 5 {
		return nil, repo.ErrNotFound
	}
	return []repo.SectionDeviceRow{{SectionDeviceID: 11, DeviceName: "valve"}}, nil
}

func setup() (*mux.Router, *fakeStore, *int) {
	st := &fakeStore{}
	changes := 0
	r := mux.NewRouter()
	Attach(r, Dependencies{Store: st, HashPassword: secrets.HashPassword, Changed: func() { changes++ }})
	return r, st, &changes
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestDashboard(t *testing.T) {
	r, _, _ := setup()
	rec := do(r, http.MethodPost, "/admin", `{"admin_id":"1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"admin_data"`)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/admin", `{"admin_id":2}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/admin", `{}`).Code)
}

func TestCreateFarmerHashesPassword(t *testing.T) {
	r, st, changes := setup()
	rec := do(r, http.MethodPost, "/admin/farmer/1", `{"farmer_fname":"Ravi","farmer_lname":"K",
		"farmer_password":"pw","farmer_phone":"99","farmer_email":"r@x.in"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "farmer_password")
	assert.Equal(t, 1, *changes)

	ok, err := secrets.VerifyPassword(st.created.FarmerPassword, "pw")
	require.NoError(t, err)
	assert.True(t, ok)

	rec = do(r, http.MethodPost, "/admin/farmer/1", `{"farmer_fname":"Ravi"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var p models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Contains(t, p.Errors, "farmer_password")
	assert.Contains(t, p.Errors, "farmer_email")

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/admin/farmer/2", `{"farmer_fname":"a","farmer_lname":"b",
		"farmer_password":"c","farmer_phone":"d","farmer_email":"e"}`).Code)
}

func TestUpdateFarmer(t *testing.T) {
	r, st, _ := setup()

	rec := do(r, http.MethodPatch, "/admin/farmer", `{"admin_id":1,"farmer_id":7,"update_key":"farmer_phone","update_val":"123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, repo.FarmerPhone("123"), st.farmerUpdate)

	rec = do(r, http.MethodPatch, "/admin/farmer", `{"admin_id":1,"farmer_id":7,"update_key":"farmer_password","update_val":"new"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	hash, ok := st.farmerUpdate.(repo.FarmerPasswordHash)
	require.True(t, ok)
	valid, err := secrets.VerifyPassword(string(hash), "new")
	require.NoError(t, err)
	assert.True(t, valid)

	rec = do(r, http.MethodPatch, "/admin/farmer", `{"admin_id":1,"farmer_id":7,"update_key":"admin_id","update_val":"2"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "update_key")

	rec = do(r, http.MethodPatch, "/admin/farmer", `{"admin_id":2,"farmer_id":7,"update_key":"farmer_phone","update_val":"1"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateFarm(t *testing.T) {
	r, st, changes := setup()

	rec := do(r, http.MethodPatch, "/admin/farmer/farm",
		`{"admin_id":1,"farmer_id":7,"farm_id":3,"update_key":"auto_on_threshold","update_val":35}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, repo.AutoOnThreshold(35), st.farmUpdate)
	assert.Equal(t, 1, *changes)

	rec = do(r, http.MethodPatch, "/admin/farmer/farm",
		`{"admin_id":1,"farmer_id":7,"farm_id":4,"update_key":"farm_name","update_val":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(r, http.MethodPatch, "/admin/farmer/farm",
		`{"admin_id":1,"farmer_id":7,"farm_id":3,"update_key":"farmer_id","update_val":9}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParseFarmUpdate(t *testing.T) {
	cases := []struct {
		key, val string
		want     repo.FarmUpdate
	}{
		{"farm_name", `" North "`, repo.FarmNameValue("North")},
		{"farm_key", `"k1"`, repo.FarmKeyValue("k1")},
		{"farm_size", `2.5`, repo.FarmSizeValue(2.5)},
		{"auto_off_threshold", `70`, repo.AutoOffThreshold(70)},
		{"farm_location_cordinates", `[[12.9,77.5]]`, repo.FarmLocationValue(datatypes.JSON(`[[12.9,77.5]]`))},
	}
	for _, c := range cases {
		got, err := parseFarmUpdate(c.key, json.RawMessage(c.val))
		require.NoError(t, err, c.key)
		assert.Equal(t, c.want, got, c.key)
	}

	bad := map[string]string{
		"farm_size":                `-1`,
		"auto_on_threshold":        `101`,
		"farm_name":                `5`,
		"farm_location_cordinates": `"here"`,
		"farm_id":                  `1`,
	}
	for key, val := range bad {
		_, err := parseFarmUpdate(key, json.RawMessage(val))
		var verr *models.ValidationError
		assert.ErrorAs(t, err, &verr, key)
	}
}

func TestListings(t *testing.T) {
	r, _, _ := setup()

	rec := do(r, http.MethodPost, "/admin/farmer/farm", `{"admin_id":1,"farmer_id":7}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"farm_key":"abc"`)

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/admin/farmer/farm/section", `{"admin_id":1,"farmer_id":7,"farm_id":3}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/admin/farmer/farm/section", `{"admin_id":1,"farmer_id":7}`).Code)

	rec = do(r, http.MethodPost, "/admin/farmer/farm/section/devices", `{"admin_id":1,"farmer_id":7,"farm_id":3,"section_id":5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"section_devices_data"`)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/admin/farmer/farm/section/devices",
		`{"admin_id":1,"farmer_id":7,"farm_id":3,"section_id":6}`).Code)
}
