package access

// Role identifies a staff role. The set is closed: adding a role means
// updating Capabilities, which the compiler checks for exhaustiveness via
// the default branch returning nothing.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleMedicalAdmin Role = "medical_admin"
	RoleDoctor       Role = "doctor"
	RoleNurse        Role = "nurse"
	RoleSecretary    Role = "secretary"
)

// Valid reports whether r is one of the known roles. The zero value ""
// represents an account without a role profile and holds no capabilities.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMedicalAdmin, RoleDoctor, RoleNurse, RoleSecretary:
		return true
	}
	return false
}

// Capability is a named permission bit attached to a role.
type Capability string

const (
	ViewAllPatients          Capability = "view_all_patients"
	ViewCentreScopedPatients Capability = "view_centre_scoped_patients"
	ManageAdminData          Capability = "manage_admin_data"
	ManageMedicalData        Capability = "manage_medical_data"
	ManageUsers              Capability = "manage_users"
	ManageCentres            Capability = "manage_centres"
	ViewStatistics           Capability = "view_statistics"
	ManageAppointments       Capability = "manage_appointments"
)

// Capabilities returns the fixed capability set for a role. Unknown roles
// (including the empty "no profile" value) hold nothing.
func (r Role) Capabilities() []Capability {
	switch r {
	case RoleAdmin, RoleMedicalAdmin:
		return []Capability{
			ViewAllPatients, ManageAdminData, ManageMedicalData,
			ManageUsers, ManageCentres, ViewStatistics, ManageAppointments,
		}
	case RoleDoctor:
		return []Capability{
			ViewAllPatients, ManageAdminData, ManageMedicalData,
			ViewStatistics, ManageAppointments,
		}
	case RoleSecretary:
		return []Capability{
			ViewCentreScopedPatients, ManageAdminData,
		}
	case RoleNurse:
		return nil
	}
	return nil
}

// Can reports whether the role holds the given capability.
func (r Role) Can(c Capability) bool {
	for _, have := range r.Capabilities() {
		if have == c {
			return true
		}
	}
	return false
}
