package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kyawswar87/share-mal/pkg/api"
)

func (s *Server) listBills(w http.ResponseWriter, r *http.Request) {
	bills, err := s.bills.ListBills(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeSuccess(s, w, http.StatusOK, bills, "Bills retrieved successfully")
}

func (s *Server) getBill(w http.ResponseWriter, r *http.Request) {
	id, ok := s.billID(w, r)
	if !ok {
		return
	}
	bill, err := s.bills.GetBill(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeSuccess(s, w, http.StatusOK, bill, "Bill retrieved successfully")
}

func (s *Server) createBill(w http.ResponseWriter, r *http.Request) {
	var req api.BillCreateRequest
	if !s.decode(w, r, &req) {
		return
	}
	bill, err := s.bills.CreateBill(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeSuccess(s, w, http.StatusCreated, bill, "Bill created successfully")
}

func (s *Server) updateBill(w http.ResponseWriter, r *http.Request) {
	id, ok := s.billID(w, r)
	if !ok {
		return
	}
	var req api.BillUpdateRequest
	if !s.decode(w, r, &req) {
		return
	}
	bill, err := s.bills.UpdateBill(r.Context(), id, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeSuccess(s, w, http.StatusOK, bill, "Bill updated successfully")
}

func (s *Server) deleteBill(w http.ResponseWriter, r *http.Request) {
	id, ok := s.billID(w, r)
	if !ok {
		return
	}
	if err := s.bills.DeleteBill(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeSuccess[any](s, w, http.StatusOK, nil, "Bill deleted successfully")
}

func (s *Server) listBillsByStatus(w http.ResponseWriter, r *http.Request) {
	status, err := api.ParseBillStatus(chi.URLParam(r, "status"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, api.CodeIllegalArgument, "Invalid bill status: "+chi.URLParam(r, "status"), nil)
		return
	}
	bills, err := s.bills.ListBillsByStatus(r.Context(), status)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeSuccess(s, w, http.StatusOK, bills, "Bills retrieved successfully")
}

func (s *Server) searchBills(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !query.Has("title") {
		s.writeError(w, http.StatusBadRequest, api.CodeIllegalArgument, "Required parameter 'title' is missing", nil)
		return
	}
	bills, err := s.bills.SearchBills(r.Context(), query.Get("title"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeSuccess(s, w, http.StatusOK, bills, "Bills retrieved successfully")
}

func (s *Server) togglePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := s.billID(w, r)
	if !ok {
		return
	}
	raw := r.URL.Query().Get("personId")
	if raw == "" {
		s.writeError(w, http.StatusBadRequest, api.CodeIllegalArgument, "Required parameter 'personId' is missing", nil)
		return
	}
	personID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, api.CodeIllegalArgument, "Invalid person id: "+raw, nil)
		return
	}
	bill, err := s.bills.TogglePayment(r.Context(), id, personID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeSuccess(s, w, http.StatusOK, bill, "Payment status updated successfully")
}

func (s *Server) refreshStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := s.billID(w, r)
	if !ok {
		return
	}
	bill, err := s.bills.RefreshStatus(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeSuccess(s, w, http.StatusOK, bill, "Bill status updated successfully")
}

// billID parses the {id} path parameter, answering 400 when it is not a
// positive integer.
func (s *Server) billID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, http.StatusBadRequest, api.CodeIllegalArgument, "Invalid bill id: "+raw, nil)
		return 0, false
	}
	return id, true
}
