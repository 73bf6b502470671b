package user

type Permission string

const (
	// Self service
	PermissionViewOwnProfile  Permission = "profile.view_own"
	PermissionTimeClock       Permission = "time.clock"
	PermissionTimeViewOwn     Permission = "time.view_own"
	PermissionAttendanceOwn   Permission = "attendance.view_own"
	PermissionVacationViewOwn Permission = "vacation.view_own"

	// Administration
	PermissionEmployeeViewAll   Permission = "employee.view_all"
	PermissionTimeCorrect       Permission = "time.correct"
	PermissionAttendanceViewAll Permission = "attendance.view_all"
	PermissionAttendanceExcuse  Permission = "attendance.excuse"
	PermissionGoalsManage       Permission = "goals.manage"
	PermissionSettingsManage    Permission = "settings.manage"
	PermissionReportsView       Permission = "reports.view"
	PermissionVacationManage    Permission = "vacation.manage"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		// Admins can also clock in for themselves
		PermissionViewOwnProfile,
		PermissionTimeClock,
		PermissionTimeViewOwn,
		PermissionAttendanceOwn,
		PermissionVacationViewOwn,
		PermissionEmployeeViewAll,
		PermissionTimeCorrect,
		PermissionAttendanceViewAll,
		PermissionAttendanceExcuse,
		PermissionGoalsManage,
		PermissionSettingsManage,
		PermissionReportsView,
		PermissionVacationManage,
	},
	RoleEmployee: {
		PermissionViewOwnProfile,
		PermissionTimeClock,
		PermissionTimeViewOwn,
		PermissionAttendanceOwn,
		PermissionVacationViewOwn,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
