package handlers

import (
	"net/http"
)

// VendorRegisterHandler godoc
// @Summary Register a vendor and return a JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param vendor body VendorRegistration true "email, store name and password"
// @Success 201 {object} RegisterResult
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Email or store name taken"
// @Router /auth/vendor-register [post]
func VendorRegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req VendorRegistration
	if err := readJSON(w, r, &req); err != nil {
		badRequest(w, "invalid input")
		return
	}

	_, token, err := authService.Register(r.Context(), req.Email, req.StoreName, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, http.StatusCreated, RegisterResult{Message: "vendor registered", Token: token})
}

// VendorLoginHandler godoc
// @Summary Authenticate a vendor and return a JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body VendorLogin true "email or store name, and password"
// @Success 200 {object} LoginResult
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Failure 403 {object} ErrorResponse "Vendor inactive"
// @Failure 429 {object} ErrorResponse "Locked out"
// @Router /auth/vendor-login [post]
func VendorLoginHandler(w http.ResponseWriter, r *http.Request) {
	var req VendorLogin
	if err := readJSON(w, r, &req); err != nil {
		badRequest(w, "invalid input")
		return
	}

	token, err := authService.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	respond(w, http.StatusOK, LoginResult{Token: token})
}
