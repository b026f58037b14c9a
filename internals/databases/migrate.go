// file: internals/databases/migrate.go
package database

import (
	"log"

	"gorm.io/gorm"

	academics "sekolahku_backend/internals/features/school/academics/model"
	attendance "sekolahku_backend/internals/features/school/attendance/model"
	migration "sekolahku_backend/internals/features/school/migration/model"
)

// AutoMigrate menjalankan migrasi skema untuk seluruh model aplikasi.
// Dipakai saat boot (opsional via RUN_AUTOMIGRATE) dan oleh test suite.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// master data
		&academics.ClassModel{},
		&academics.SubjectModel{},
		&academics.StudentModel{},
		&academics.StudentEnrollmentModel{},
		&academics.TeacherModel{},
		&academics.TeacherAssignmentModel{},

		// ledger + agregat + audit
		&attendance.AttendanceEventModel{},
		&attendance.AttendanceSummaryModel{},
		&attendance.AttendanceAuditLogModel{},

		// skema lama (input migrasi)
		&migration.LegacyStudentAttendanceModel{},
	)
}

// MustAutoMigrate: varian boot — fatal saat gagal.
func MustAutoMigrate(db *gorm.DB) {
	if err := AutoMigrate(db); err != nil {
		log.Fatalf("❌ AutoMigrate gagal: %v", err)
	}
	log.Println("✅ AutoMigrate selesai")
}
