// Package chat implementa la parte de retrieval-augmented generation: busca
// los pasajes relevantes de un programa, arma el prompt y consulta un modelo
// compatible con la API de chat completions de OpenAI.
package chat
