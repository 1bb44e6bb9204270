package salonservice

import "github.com/m04kA/SMC-SalonBooking/pkg/dbmetrics"

// DBExecutor интерфейс для выполнения запросов (поддерживает транзакции через контекст)
type DBExecutor = dbmetrics.DBExecutor
