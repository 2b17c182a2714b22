// Package repository define los contratos de persistencia del dominio.
//
// Las implementaciones viven en internal/store/pg (producción) e
// internal/store/memory (tests y storage.driver=memory). Ambas respetan la
// misma semántica; los tests de ledger corren contra las dos.
//
//	┌──────────────────────────────────────────────┐
//	│        services (auth, programs, chat)       │
//	└──────────────────────────────────────────────┘
//	                      │
//	                      ▼
//	┌──────────────────────────────────────────────┐
//	│   repository: PrincipalRepository,           │
//	│   SessionLedger, ProgramRepository, ...      │
//	└──────────────────────────────────────────────┘
//	              │                 │
//	              ▼                 ▼
//	       store/pg (pgx)     store/memory
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - "no existe" se reporta con ErrNotFound, duplicados con ErrConflict
package repository
