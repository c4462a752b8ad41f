package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/odontocare/clinica-server/internal/middleware"
	"github.com/odontocare/clinica-server/internal/scheduling"
	"github.com/odontocare/clinica-server/internal/utils"
)

// CitaHandler handles appointment related requests.
type CitaHandler struct {
	Service *scheduling.Service
}

// NewCitaHandler creates a new CitaHandler.
func NewCitaHandler(service *scheduling.Service) *CitaHandler {
	return &CitaHandler{Service: service}
}

// idValue accepts an id sent either as a JSON number or as a string
// ("id_doctor": 1 and "id_doctor": "1" both work). Whether the value is
// actually numeric is the scheduling engine's call, so its InvalidInput
// message names the field the same way for body and query parameters.
type idValue string

func (v *idValue) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		s = ""
	}
	*v = idValue(s)
	return nil
}

// AgendarCitaRequest represents the request body for booking an
// appointment. id_paciente is only meaningful for admin callers; a
// paciente books through their own linked record.
type AgendarCitaRequest struct {
	Fecha      string  `json:"fecha"`
	Motivo     string  `json:"motivo"`
	IDDoctor   idValue `json:"id_doctor"`
	IDCentro   idValue `json:"id_centro"`
	IDPaciente idValue `json:"id_paciente"`
}

// AgendarCita handles booking a new appointment.
func (h *CitaHandler) AgendarCita(c *gin.Context) {
	caller, exists := middleware.GetIdentityFromContext(c)
	if !exists {
		utils.Unauthorized(c, "Usuario no autenticado")
		return
	}

	var req AgendarCitaRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	cita, err := h.Service.Book(c.Request.Context(), caller, scheduling.BookRequest{
		Fecha:      req.Fecha,
		Motivo:     req.Motivo,
		IDDoctor:   string(req.IDDoctor),
		IDCentro:   string(req.IDCentro),
		IDPaciente: string(req.IDPaciente),
	})
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Created(c, "Cita creada correctamente", cita)
}

// ListarCitas handles listing appointments with role-scoped filters.
func (h *CitaHandler) ListarCitas(c *gin.Context) {
	caller, exists := middleware.GetIdentityFromContext(c)
	if !exists {
		utils.Unauthorized(c, "Usuario no autenticado")
		return
	}

	citas, err := h.Service.List(c.Request.Context(), caller, scheduling.ListFilters{
		IDDoctor:   c.Query("id_doctor"),
		IDCentro:   c.Query("id_centro"),
		IDPaciente: c.Query("id_paciente"),
		Fecha:      c.Query("fecha"),
		Estado:     c.Query("estado"),
	})
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Success(c, "Citas obtenidas correctamente", citas)
}

// CancelarCita handles cancelling an appointment.
func (h *CitaHandler) CancelarCita(c *gin.Context) {
	caller, exists := middleware.GetIdentityFromContext(c)
	if !exists {
		utils.Unauthorized(c, "Usuario no autenticado")
		return
	}

	citaID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "id_cita debe ser numerico")
		return
	}

	cita, err := h.Service.Cancel(c.Request.Context(), caller, uint(citaID))
	if err != nil {
		utils.FromError(c, err)
		return
	}

	utils.Success(c, "Cita cancelada correctamente", cita)
}
