package scheduling_test

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/odontocare/clinica-server/internal/apperrors"
	"github.com/odontocare/clinica-server/internal/models"
	"github.com/odontocare/clinica-server/internal/scheduling"
	"github.com/odontocare/clinica-server/internal/store"
)

type fixture struct {
	st  *store.MemStore
	svc *scheduling.Service

	admin      scheduling.Identity
	secretaria scheduling.Identity
	medico     scheduling.Identity
	paciente   scheduling.Identity

	doctor        models.Doctor
	centro        models.Centro
	pacienteRow   models.Paciente // linked to the paciente identity, ACTIVO
	pacienteLibre models.Paciente // no linked usuario, ACTIVO
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.NewMemStore()

	admin := st.AddUsuario(models.Usuario{Username: "admin", Rol: models.RoleAdmin})
	secretaria := st.AddUsuario(models.Usuario{Username: "sonia", Rol: models.RoleSecretaria})
	medicoUser := st.AddUsuario(models.Usuario{Username: "drlopez", Rol: models.RoleMedico})
	pacienteUser := st.AddUsuario(models.Usuario{Username: "maria", Rol: models.RolePaciente})

	doctor := st.AddDoctor(models.Doctor{UsuarioID: &medicoUser.ID, Nombre: "Dr. Lopez", Especialidad: "Ortodoncia"})
	centro := st.AddCentro(models.Centro{Nombre: "Clinica Centro", Direccion: "Calle Mayor 1"})
	pacienteRow := st.AddPaciente(models.Paciente{UsuarioID: &pacienteUser.ID, Nombre: "Maria", Telefono: "600111222", Estado: models.PacienteActivo})
	pacienteLibre := st.AddPaciente(models.Paciente{Nombre: "Pedro", Telefono: "600333444", Estado: models.PacienteActivo})

	return &fixture{
		st:  st,
		svc: scheduling.NewService(st, zap.NewNop()),

		admin:      scheduling.Identity{UsuarioID: admin.ID, Role: admin.Rol},
		secretaria: scheduling.Identity{UsuarioID: secretaria.ID, Role: secretaria.Rol},
		medico:     scheduling.Identity{UsuarioID: medicoUser.ID, Role: medicoUser.Rol},
		paciente:   scheduling.Identity{UsuarioID: pacienteUser.ID, Role: pacienteUser.Rol},

		doctor:        doctor,
		centro:        centro,
		pacienteRow:   pacienteRow,
		pacienteLibre: pacienteLibre,
	}
}

func (f *fixture) bookReq() scheduling.BookRequest {
	return scheduling.BookRequest{
		Fecha:      "2025-09-10 10:00",
		Motivo:     "Revision",
		IDDoctor:   strconv.FormatUint(uint64(f.doctor.ID), 10),
		IDCentro:   strconv.FormatUint(uint64(f.centro.ID), 10),
		IDPaciente: strconv.FormatUint(uint64(f.pacienteLibre.ID), 10),
	}
}

func assertKind(t *testing.T, err error, want apperrors.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error of kind %v, got nil", want)
	}
	if got := apperrors.KindOf(err); got != want {
		t.Fatalf("error kind = %v (%v), want %v", got, err, want)
	}
}

func TestBookDeniedRoles(t *testing.T) {
	f := newFixture(t)
	for _, caller := range []scheduling.Identity{f.medico, f.secretaria, {UsuarioID: 99, Role: "recepcion"}} {
		_, err := f.svc.Book(context.Background(), caller, f.bookReq())
		assertKind(t, err, apperrors.KindPermissionDenied)
	}
}

func TestBookMissingFields(t *testing.T) {
	f := newFixture(t)
	req := f.bookReq()
	req.Fecha = ""
	req.Motivo = ""

	_, err := f.svc.Book(context.Background(), f.admin, req)
	assertKind(t, err, apperrors.KindInvalidInput)
	if !strings.Contains(err.Error(), "fecha") || !strings.Contains(err.Error(), "motivo") {
		t.Errorf("error should name the missing fields, got %q", err.Error())
	}
}

func TestBookNonNumericIDs(t *testing.T) {
	f := newFixture(t)

	req := f.bookReq()
	req.IDDoctor = "uno"
	_, err := f.svc.Book(context.Background(), f.admin, req)
	assertKind(t, err, apperrors.KindInvalidInput)

	req = f.bookReq()
	req.IDCentro = "x"
	_, err = f.svc.Book(context.Background(), f.admin, req)
	assertKind(t, err, apperrors.KindInvalidInput)

	req = f.bookReq()
	req.IDPaciente = "abc"
	_, err = f.svc.Book(context.Background(), f.admin, req)
	assertKind(t, err, apperrors.KindInvalidInput)
}

func TestBookAdminRequiresPaciente(t *testing.T) {
	f := newFixture(t)
	req := f.bookReq()
	req.IDPaciente = ""
	_, err := f.svc.Book(context.Background(), f.admin, req)
	assertKind(t, err, apperrors.KindInvalidInput)
}

func TestBookAdminUnknownPaciente(t *testing.T) {
	f := newFixture(t)
	req := f.bookReq()
	req.IDPaciente = "9999"
	_, err := f.svc.Book(context.Background(), f.admin, req)
	assertKind(t, err, apperrors.KindNotFound)
}

func TestBookPacienteWithoutLinkedRecord(t *testing.T) {
	f := newFixture(t)
	otro := f.st.AddUsuario(models.Usuario{Username: "sinperfil", Rol: models.RolePaciente})

	req := f.bookReq()
	req.IDPaciente = ""
	_, err := f.svc.Book(context.Background(), scheduling.Identity{UsuarioID: otro.ID, Role: otro.Rol}, req)
	assertKind(t, err, apperrors.KindInvalidInput)
}

func TestBookPacienteUsesOwnRecord(t *testing.T) {
	f := newFixture(t)
	req := f.bookReq()
	req.IDPaciente = "" // ignored for paciente callers anyway

	cita, err := f.svc.Book(context.Background(), f.paciente, req)
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	if cita.PacienteID != f.pacienteRow.ID {
		t.Errorf("cita.PacienteID = %d, want own record %d", cita.PacienteID, f.pacienteRow.ID)
	}
	if cita.RegistradaPorID != f.paciente.UsuarioID {
		t.Errorf("cita.RegistradaPorID = %d, want caller %d", cita.RegistradaPorID, f.paciente.UsuarioID)
	}
}

func TestBookInactivePatientConflict(t *testing.T) {
	f := newFixture(t)
	inactivo := f.st.AddPaciente(models.Paciente{Nombre: "Luis", Telefono: "600555666", Estado: models.PacienteInactivo})

	req := f.bookReq()
	req.IDPaciente = strconv.FormatUint(uint64(inactivo.ID), 10)
	// Point at a doctor that does not exist: the inactive-patient check
	// must fire first, so this still reports Conflict and not NotFound.
	req.IDDoctor = "9999"

	_, err := f.svc.Book(context.Background(), f.admin, req)
	assertKind(t, err, apperrors.KindConflict)
}

func TestBookInactiveLinkedPatientConflict(t *testing.T) {
	f := newFixture(t)
	inactivoUser := f.st.AddUsuario(models.Usuario{Username: "carlos", Rol: models.RolePaciente})
	f.st.AddPaciente(models.Paciente{UsuarioID: &inactivoUser.ID, Nombre: "Carlos", Telefono: "600777888", Estado: models.PacienteInactivo})

	_, err := f.svc.Book(context.Background(), scheduling.Identity{UsuarioID: inactivoUser.ID, Role: inactivoUser.Rol}, f.bookReq())
	assertKind(t, err, apperrors.KindConflict)
}

func TestBookUnknownDoctor(t *testing.T) {
	f := newFixture(t)
	req := f.bookReq()
	req.IDDoctor = "9999"
	_, err := f.svc.Book(context.Background(), f.admin, req)
	assertKind(t, err, apperrors.KindNotFound)
}

func TestBookUnknownCentro(t *testing.T) {
	f := newFixture(t)
	req := f.bookReq()
	req.IDCentro = "9999"
	_, err := f.svc.Book(context.Background(), f.admin, req)
	assertKind(t, err, apperrors.KindNotFound)
}

func TestBookThenDoubleBookConflict(t *testing.T) {
	f := newFixture(t)

	cita, err := f.svc.Book(context.Background(), f.admin, f.bookReq())
	if err != nil {
		t.Fatalf("first Book() error = %v", err)
	}
	if cita.Estado != models.CitaActiva {
		t.Errorf("cita.Estado = %q, want %q", cita.Estado, models.CitaActiva)
	}

	_, err = f.svc.Book(context.Background(), f.admin, f.bookReq())
	assertKind(t, err, apperrors.KindConflict)
}

func TestBookSameFechaDifferentDoctor(t *testing.T) {
	f := newFixture(t)
	otroDoctor := f.st.AddDoctor(models.Doctor{Nombre: "Dra. Ruiz", Especialidad: "Endodoncia"})

	if _, err := f.svc.Book(context.Background(), f.admin, f.bookReq()); err != nil {
		t.Fatalf("first Book() error = %v", err)
	}

	req := f.bookReq()
	req.IDDoctor = strconv.FormatUint(uint64(otroDoctor.ID), 10)
	if _, err := f.svc.Book(context.Background(), f.admin, req); err != nil {
		t.Fatalf("booking same fecha with another doctor should succeed, got %v", err)
	}
}

func TestCancelFreesSlotForRebooking(t *testing.T) {
	f := newFixture(t)

	cita, err := f.svc.Book(context.Background(), f.admin, f.bookReq())
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	if _, err := f.svc.Cancel(context.Background(), f.secretaria, cita.ID); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}

	rebooked, err := f.svc.Book(context.Background(), f.admin, f.bookReq())
	if err != nil {
		t.Fatalf("re-booking a cancelled slot should succeed, got %v", err)
	}
	if rebooked.ID == cita.ID {
		t.Error("re-booking must create a new cita, not resurrect the cancelled one")
	}
}

func TestCancelDeniedRoles(t *testing.T) {
	f := newFixture(t)
	cita, err := f.svc.Book(context.Background(), f.admin, f.bookReq())
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}

	for _, caller := range []scheduling.Identity{f.medico, f.paciente} {
		_, err := f.svc.Cancel(context.Background(), caller, cita.ID)
		assertKind(t, err, apperrors.KindPermissionDenied)
	}
}

func TestCancelUnknownCita(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Cancel(context.Background(), f.admin, 9999)
	assertKind(t, err, apperrors.KindNotFound)
}

func TestCancelAlreadyCancelledConflict(t *testing.T) {
	f := newFixture(t)
	cita, err := f.svc.Book(context.Background(), f.admin, f.bookReq())
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}

	cancelled, err := f.svc.Cancel(context.Background(), f.admin, cita.ID)
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if cancelled.Estado != models.CitaCancelada {
		t.Errorf("cita.Estado = %q, want %q", cancelled.Estado, models.CitaCancelada)
	}

	_, err = f.svc.Cancel(context.Background(), f.admin, cita.ID)
	assertKind(t, err, apperrors.KindConflict)
}

func TestCancelOnlyChangesEstado(t *testing.T) {
	f := newFixture(t)
	cita, err := f.svc.Book(context.Background(), f.admin, f.bookReq())
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}

	cancelled, err := f.svc.Cancel(context.Background(), f.secretaria, cita.ID)
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if cancelled.Fecha != cita.Fecha || cancelled.Motivo != cita.Motivo ||
		cancelled.DoctorID != cita.DoctorID || cancelled.CentroID != cita.CentroID ||
		cancelled.PacienteID != cita.PacienteID || cancelled.RegistradaPorID != cita.RegistradaPorID {
		t.Error("cancel must not change any field besides estado")
	}
}

func TestConcurrentBookingSameSlot(t *testing.T) {
	f := newFixture(t)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Book(context.Background(), f.admin, f.bookReq())
		}(i)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case apperrors.KindOf(err) == apperrors.KindConflict:
			conflicts++
		default:
			t.Errorf("unexpected error under concurrent booking: %v", err)
		}
	}
	if successes != 1 {
		t.Errorf("successes = %d, want exactly 1", successes)
	}
	if conflicts != attempts-1 {
		t.Errorf("conflicts = %d, want %d", conflicts, attempts-1)
	}
}
