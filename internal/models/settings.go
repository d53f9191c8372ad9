package models

// Settings documento remoto con la configuración de conexión.
// Se carga una sola vez y se pasa por valor a cada etapa.
type Settings struct {
	ConnectionString string `json:"connectionString"`
	APIURL           string `json:"apiUrl"`
	Token            string `json:"token"`
}
