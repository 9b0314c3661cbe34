package repository

// Set agrupa los repositorios de un driver de almacenamiento. Tx puede ser nil cuando el
// driver no soporta transacciones.
type Set struct {
	Companies   CompanyRepository
	Employees   EmployeeRepository
	Assets      AssetRepository
	Activity    ActivityRepository
	Credentials CredentialRepository
	Tx          TxRunner
}
