package main

var demoQuestions = []string{
	"Siapa itu Vin Corp? dan bagaimana Vinc Corp melakukan pengambilan keputasan bisnis agar tetap relevan?",
	"Apa kegunaan Vnelia VOC? dan jelaskan kenapa saya harus menggunakannya",
	"Jelaskan kandungan teknis didalam produk Vnelia VOC?",
	"Bagaimana produk Vnelia VOC dikemas dan didistribusikan?",
	"Bagaimana saya dapat menghubungi layanan pelanggan?",
	"Jelaskan tren produk terjual pada tahun 2023 - 2024?",
	"Bagaimana umpan balik atau review dari pelanggan mengenai Vnelia VOC?",
	"Berapa total transaksi dan volume item yang diproses pada 2024-03-01?",
	"Dimanakah lokasi pelanggan pada transaksi dengan code TRX001?",
	"Apa metode pembayaran yang paling sering digunakan/populer dalam dataset transaksi?",
}
