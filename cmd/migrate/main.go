// file: cmd/migrate/main.go
//
// CLI operator untuk migrasi data absensi legacy.
//
//	migrate -school <uuid>                      # run penuh
//	migrate -school <uuid> -auto-fix            # run + autofix saat validasi gagal
//	migrate -school <uuid> -validate-only       # validasi tanpa mutasi
//	migrate -rollback -backup-file <path>       # pulihkan dari snapshot
//
// Exit code: 0 sukses, 2 sukses dengan warning, 1 gagal.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"sekolahku_backend/internals/configs"
	database "sekolahku_backend/internals/databases"
	svc "sekolahku_backend/internals/features/school/migration/service"
)

const (
	exitOK       = 0
	exitFailed   = 1
	exitWarnings = 2
)

func main() {
	var (
		schoolFlag   = flag.String("school", "", "UUID tenant sekolah")
		validateOnly = flag.Bool("validate-only", false, "hanya validasi, tanpa mutasi")
		rollback     = flag.Bool("rollback", false, "pulihkan dari file backup")
		backupFile   = flag.String("backup-file", "", "path file backup untuk -rollback")
		autoFix      = flag.Bool("auto-fix", false, "perbaiki temuan validasi otomatis")
		backupDir    = flag.String("backup-dir", svc.DefaultBackupDir, "direktori backup & laporan")
	)
	flag.Parse()

	configs.LoadEnv()
	database.ConnectDB()
	database.TunePool()

	orch := svc.NewMigrationOrchestrator()
	orch.BackupDir = *backupDir

	if *rollback {
		if *backupFile == "" {
			log.Println("❌ -rollback butuh -backup-file")
			os.Exit(exitFailed)
		}
		res, err := orch.RollbackFromFile(database.DB, *backupFile)
		if err != nil {
			printResult(res)
			log.Printf("❌ Rollback gagal: %v", err)
			os.Exit(exitFailed)
		}
		printResult(res)
		log.Println("✅ Rollback selesai")
		os.Exit(exitFor(res))
	}

	schoolID, err := uuid.Parse(*schoolFlag)
	if err != nil {
		log.Printf("❌ -school tidak valid: %v", err)
		os.Exit(exitFailed)
	}

	if *validateOnly {
		res, rep, err := orch.ValidateOnly(database.DB, schoolID)
		if err != nil {
			log.Printf("❌ Validasi gagal dijalankan: %v", err)
			os.Exit(exitFailed)
		}
		printResult(res)
		if rep.ErrorCount > 0 {
			log.Printf("❌ Validasi menemukan %d error", rep.ErrorCount)
			os.Exit(exitFailed)
		}
		log.Println("✅ Validasi bersih")
		os.Exit(exitFor(res))
	}

	res := orch.Run(database.DB, schoolID, svc.RunOptions{AutoFix: *autoFix})
	printResult(res)
	switch res.Status {
	case svc.MigrationDone:
		log.Println("✅ Migrasi selesai")
		os.Exit(exitFor(res))
	case svc.MigrationRolledBack:
		log.Println("❌ Migrasi gagal dan di-rollback")
		os.Exit(exitFailed)
	default:
		log.Printf("❌ Migrasi gagal: status %s", res.Status)
		os.Exit(exitFailed)
	}
}

func exitFor(res *svc.MigrationResult) int {
	if res.HasWarnings() {
		return exitWarnings
	}
	return exitOK
}

func printResult(res *svc.MigrationResult) {
	if res == nil {
		return
	}
	fmt.Printf("run_id     : %s\n", res.RunID)
	fmt.Printf("status     : %s\n", res.Status)
	fmt.Printf("stats      : %+v\n", res.Stats)
	if res.BackupFile != "" {
		fmt.Printf("backup     : %s\n", res.BackupFile)
	}
	if res.ReportFile != "" {
		fmt.Printf("laporan    : %s\n", res.ReportFile)
	}
	for _, w := range res.Warnings {
		fmt.Printf("warning    : %s\n", w)
	}
	for _, e := range res.Errors {
		fmt.Printf("error      : %s\n", e)
	}
}
