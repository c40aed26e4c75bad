package access

import "testing"

func TestAdminHoldsEverything(t *testing.T) {
	all := []Capability{
		ViewAllPatients, ManageAdminData, ManageMedicalData,
		ManageUsers, ManageCentres, ViewStatistics, ManageAppointments,
	}
	for _, role := range []Role{RoleAdmin, RoleMedicalAdmin} {
		for _, c := range all {
			if !role.Can(c) {
				t.Errorf("%s should hold %s", role, c)
			}
		}
	}
}

func TestDoctorCapabilities(t *testing.T) {
	if !RoleDoctor.Can(ViewAllPatients) {
		t.Error("doctor should view all patients")
	}
	if !RoleDoctor.Can(ManageMedicalData) {
		t.Error("doctor should manage medical data")
	}
	if !RoleDoctor.Can(ManageAppointments) {
		t.Error("doctor should manage appointments")
	}
	if RoleDoctor.Can(ManageUsers) || RoleDoctor.Can(ManageCentres) {
		t.Error("doctor should not manage users or centres")
	}
}

func TestSecretaryCapabilities(t *testing.T) {
	if !RoleSecretary.Can(ViewCentreScopedPatients) {
		t.Error("secretary should view centre-scoped patients")
	}
	if !RoleSecretary.Can(ManageAdminData) {
		t.Error("secretary should manage administrative data")
	}
	if RoleSecretary.Can(ManageMedicalData) {
		t.Error("secretary should not manage medical data")
	}
	if RoleSecretary.Can(ManageAppointments) {
		t.Error("secretary appointment access is read-only")
	}
	if RoleSecretary.Can(ViewStatistics) {
		t.Error("secretary should not view statistics")
	}
}

func TestNurseHoldsNoCapabilities(t *testing.T) {
	if caps := RoleNurse.Capabilities(); len(caps) != 0 {
		t.Errorf("nurse should hold no capabilities, got %v", caps)
	}
}

func TestUnknownRoleHoldsNothing(t *testing.T) {
	var none Role
	if none.Valid() {
		t.Error("zero role should be invalid")
	}
	if len(none.Capabilities()) != 0 {
		t.Error("zero role should hold no capabilities")
	}
	if Role("intern").Can(ManageAdminData) {
		t.Error("unknown role should hold nothing")
	}
}
